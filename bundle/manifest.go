// Package bundle builds and verifies export bundles: a directory holding a
// manifest, an optional audit chain export and the referenced evidence
// documents, distributed as a self-contained verifiable unit.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lifeready/ledger/audit"
)

const (
	// ManifestFileName sits at the bundle root.
	ManifestFileName = "manifest.json"
	// AuditFileName is the chain export at the bundle root. Its absence
	// means "no audit trail for this bundle", which is accepted.
	AuditFileName = "audit.jsonl"
	// DocumentsDir holds exported document blobs.
	DocumentsDir = "documents"
)

const hexHashLen = 64

// ExportManifest describes one export. It is a point-in-time artifact,
// immutable after export, consumed only by verification.
type ExportManifest struct {
	CaseID            string             `json:"case_id"`
	CaseType          string             `json:"case_type"`
	ExportedAt        string             `json:"exported_at"`
	AuditHeadHash     string             `json:"audit_head_hash"`
	AuditEventsSHA256 string             `json:"audit_events_sha256"`
	Documents         []ManifestDocument `json:"documents"`
}

type ManifestDocument struct {
	SlotName     string `json:"slot_name"`
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	SHA256       string `json:"sha256"`
	BundlePath   string `json:"bundle_path"`
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*ExportManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &audit.VerifyError{Kind: audit.KindIO, Path: path, Err: err}
	}
	var m ExportManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &audit.VerifyError{Kind: audit.KindParse, Path: path, Err: err}
	}
	return &m, nil
}

// Validate checks the hash-field shape invariants before any cryptographic
// work: audit_head_hash may be empty (no audit data) but is otherwise
// exactly 64 characters, and audit_events_sha256 is always exactly 64.
func (m *ExportManifest) Validate() error {
	if m.AuditHeadHash != "" && len(m.AuditHeadHash) != hexHashLen {
		return &audit.VerifyError{
			Kind:   audit.KindStructural,
			Detail: fmt.Sprintf("audit_head_hash must be %d characters, got %d", hexHashLen, len(m.AuditHeadHash)),
		}
	}
	if len(m.AuditEventsSHA256) != hexHashLen {
		return &audit.VerifyError{
			Kind:   audit.KindStructural,
			Detail: fmt.Sprintf("audit_events_sha256 must be %d characters, got %d", hexHashLen, len(m.AuditEventsSHA256)),
		}
	}
	return nil
}

// resolveBundlePath maps a manifest bundle_path onto the filesystem:
// file:// prefixes and absolute paths are taken as-is, everything else is
// relative to the bundle root.
func resolveBundlePath(baseDir, bundlePath string) string {
	if trimmed, ok := strings.CutPrefix(bundlePath, "file://"); ok {
		return trimmed
	}
	if filepath.IsAbs(bundlePath) {
		return bundlePath
	}
	return filepath.Join(baseDir, bundlePath)
}

func sha256File(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &audit.VerifyError{Kind: audit.KindIO, Path: path, Err: err}
	}
	return sha256Bytes(raw), nil
}

func sha256Bytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
