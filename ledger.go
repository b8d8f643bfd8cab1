// Package ledger is the facade over the tamper-evident audit ledger: an
// append-only, hash-chained event log plus offline verification of exported
// chains and evidence bundles.
package ledger

import (
	"time"

	"go.uber.org/zap"

	"github.com/lifeready/ledger/audit"
)

type Client = audit.Service

type Option func(*config)

type config struct {
	now       func() time.Time
	newID     func() string
	sanitizer Sanitizer
	logger    *zap.Logger
}

func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func WithIDSource(newID func() string) Option {
	return func(c *config) { c.newID = newID }
}

func WithSanitizer(s Sanitizer) Option {
	return func(c *config) {
		if s != nil {
			c.sanitizer = s
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func New(store Store, opts ...Option) *Client {
	cfg := config{
		sanitizer: audit.NoopSanitizer{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var auditOpts []audit.Option
	if cfg.now != nil {
		auditOpts = append(auditOpts, audit.WithClock(cfg.now))
	}
	if cfg.newID != nil {
		auditOpts = append(auditOpts, audit.WithIDSource(cfg.newID))
	}
	if cfg.logger != nil {
		auditOpts = append(auditOpts, audit.WithLogger(cfg.logger))
	}

	return audit.NewService(store, cfg.sanitizer, auditOpts...)
}
