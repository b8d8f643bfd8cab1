package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ChainSource supplies the audit chain snapshot for an export. The head
// returned must be exactly the head observed in that snapshot, not a pre-
// or post-snapshot value.
type ChainSource interface {
	WriteChain(ctx context.Context, w io.Writer) (head string, err error)
}

// Document is one evidence file to include in a bundle.
type Document struct {
	SlotName     string
	DocumentID   string
	DocumentType string
	Title        string
	Content      []byte
}

type ExportInput struct {
	CaseID    string
	CaseType  string
	Documents []Document
}

// Exporter writes self-contained bundles: audit.jsonl, document blobs under
// documents/, and a manifest.json binding them together with checksums.
type Exporter struct {
	chain  ChainSource
	logger *zap.Logger
	now    func() time.Time
}

type ExporterOption func(*Exporter)

func WithClock(now func() time.Time) ExporterOption {
	return func(ex *Exporter) { ex.now = now }
}

func NewExporter(chain ChainSource, logger *zap.Logger, opts ...ExporterOption) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	ex := &Exporter{
		chain:  chain,
		logger: logger.Named("export"),
		now:    time.Now().UTC,
	}
	for _, opt := range opts {
		opt(ex)
	}
	return ex
}

// Export snapshots the chain and writes a complete bundle into dir. The
// audit file is always written, even for an empty chain, so that
// audit_events_sha256 stays a real digest; an empty chain exports the
// genesis hash as its head.
func (ex *Exporter) Export(ctx context.Context, dir string, in ExportInput) (*ExportManifest, error) {
	if err := os.MkdirAll(filepath.Join(dir, DocumentsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create bundle dir: %w", err)
	}

	auditPath := filepath.Join(dir, AuditFileName)
	f, err := os.Create(auditPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", AuditFileName, err)
	}
	head, err := ex.chain.WriteChain(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", AuditFileName, err)
	}

	eventsSum, err := sha256File(auditPath)
	if err != nil {
		return nil, err
	}

	docs := make([]ManifestDocument, 0, len(in.Documents))
	for _, d := range in.Documents {
		rel := filepath.Join(DocumentsDir, d.DocumentID)
		if err := os.WriteFile(filepath.Join(dir, rel), d.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write document %s: %w", d.DocumentID, err)
		}
		docs = append(docs, ManifestDocument{
			SlotName:     d.SlotName,
			DocumentID:   d.DocumentID,
			DocumentType: d.DocumentType,
			Title:        d.Title,
			SHA256:       sha256Bytes(d.Content),
			BundlePath:   rel,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SlotName < docs[j].SlotName })

	m := &ExportManifest{
		CaseID:            in.CaseID,
		CaseType:          in.CaseType,
		ExportedAt:        ex.now().Format(time.RFC3339Nano),
		AuditHeadHash:     head,
		AuditEventsSHA256: eventsSum,
		Documents:         docs,
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestFileName, err)
	}

	ex.logger.Info("bundle exported",
		zap.String("case_id", in.CaseID),
		zap.String("dir", dir),
		zap.String("head_hash", head),
		zap.Int("documents", len(docs)))
	return m, nil
}
