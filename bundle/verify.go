package bundle

import (
	"os"
	"path/filepath"

	"github.com/lifeready/ledger/audit"
)

// VerifyManifest validates a manifest plus its associated files without the
// live database: structural hash-shape checks first, then the audit.jsonl
// checksum (if the file exists under the base directory), then every
// document checksum. The base directory is bundleDir when given, otherwise
// the manifest's own parent directory. The first failure aborts.
func VerifyManifest(manifestPath string, bundleDir string) error {
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	baseDir := bundleDir
	if baseDir == "" {
		baseDir = filepath.Dir(manifestPath)
	}

	auditPath := filepath.Join(baseDir, AuditFileName)
	if _, err := os.Stat(auditPath); err == nil {
		sum, err := sha256File(auditPath)
		if err != nil {
			return err
		}
		if sum != m.AuditEventsSHA256 {
			return &audit.VerifyError{Kind: audit.KindChecksumMismatch, Path: auditPath}
		}
	}

	for _, doc := range m.Documents {
		path := resolveBundlePath(baseDir, doc.BundlePath)
		sum, err := sha256File(path)
		if err != nil {
			return err
		}
		if sum != doc.SHA256 {
			return &audit.VerifyError{Kind: audit.KindChecksumMismatch, Path: doc.BundlePath}
		}
	}

	return nil
}

// VerifyBundle is the single entry point that proves a bundle is both
// internally consistent (file checksums match the manifest) and that its
// audit trail is untampered and matches the claimed head. It locates
// manifest.json inside bundleDir, runs VerifyManifest against it, and, if
// audit.jsonl exists, replays the chain with the manifest's audit_head_hash
// as the expected head. An empty audit_head_hash claims "no audit data", so
// the chain must then verify to the genesis hash.
func VerifyBundle(bundleDir string) error {
	manifestPath := filepath.Join(bundleDir, ManifestFileName)
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	if err := VerifyManifest(manifestPath, bundleDir); err != nil {
		return err
	}

	auditPath := filepath.Join(bundleDir, AuditFileName)
	if _, err := os.Stat(auditPath); err == nil {
		expected := m.AuditHeadHash
		if expected == "" {
			expected = audit.GenesisHash
		}
		if _, err := audit.VerifyChainFile(auditPath, expected); err != nil {
			return err
		}
	}

	return nil
}
