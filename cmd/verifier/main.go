// Command verifier proves, without trusting the service that produced
// them, that an exported audit chain and evidence bundle are untampered.
//
//	verifier verify-audit --input <chain-file> [--head-hash <hex>]
//	verifier verify-manifest --manifest <path> [--bundle-dir <dir>]
//	verifier verify-bundle --bundle <dir>
//
// Exit status is 0 on success and 1 on any verification failure.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lifeready/ledger/audit"
	"github.com/lifeready/ledger/bundle"
)

const usage = `usage:
  verifier verify-audit --input <chain-file> [--head-hash <hex>]
  verifier verify-manifest --manifest <path> [--bundle-dir <dir>]
  verifier verify-bundle --bundle <dir>
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "verify-audit":
		return verifyAudit(args[1:], stdout, stderr)
	case "verify-manifest":
		return verifyManifest(args[1:], stdout, stderr)
	case "verify-bundle":
		return verifyBundle(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
}

func verifyAudit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify-audit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "path to the line-delimited chain file")
	headHash := fs.String("head-hash", "", "expected head hash (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(stderr, "verify-audit: --input is required")
		return 2
	}

	head, err := audit.VerifyChainFile(*input, *headHash)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Audit chain OK. Head hash: %s\n", head)
	return 0
}

func verifyManifest(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify-manifest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	manifest := fs.String("manifest", "", "path to manifest.json")
	bundleDir := fs.String("bundle-dir", "", "bundle root (defaults to the manifest's directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *manifest == "" {
		fmt.Fprintln(stderr, "verify-manifest: --manifest is required")
		return 2
	}

	if err := bundle.VerifyManifest(*manifest, *bundleDir); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, "Manifest OK.")
	return 0
}

func verifyBundle(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify-bundle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("bundle", "", "bundle directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dir == "" {
		fmt.Fprintln(stderr, "verify-bundle: --bundle is required")
		return 2
	}

	if err := bundle.VerifyBundle(*dir); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, "Bundle OK.")
	return 0
}
