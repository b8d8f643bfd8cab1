package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxChainLine bounds a single chain-file record. Payloads are free-form
// JSON but a single event should never approach this.
const maxChainLine = 4 * 1024 * 1024

// VerifyChainFile replays the chain file at path. See VerifyChain.
func VerifyChainFile(path string, expectedHead string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &VerifyError{Kind: KindIO, Path: path, Err: err}
	}
	defer f.Close()
	return VerifyChain(f, expectedHead)
}

// VerifyChain replays a line-delimited chain against the canonical hashing
// rule, independent of any database. It maintains a running prev_hash
// starting at GenesisHash; for each record it requires the stored prev_hash
// to equal the running value (a chain break signals reordering, deletion or
// insertion) and the stored event_hash to equal the recomputed one (a hash
// mismatch signals content tampering). Blank lines are skipped.
// Verification is fail-fast: the first failure aborts the walk.
//
// If expectedHead is non-empty the final running hash must equal it.
// On success the head hash is returned; for an empty chain that is
// GenesisHash.
func VerifyChain(r io.Reader, expectedHead string) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxChainLine)

	prev := GenesisHash
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var ev AuditEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return "", &VerifyError{Kind: KindParse, Line: line, Err: err}
		}

		if ev.PrevHash != prev {
			return "", &VerifyError{Kind: KindChainBreak, Line: line}
		}

		computed, err := ComputeEventHash(prev, ev)
		if err != nil {
			return "", &VerifyError{Kind: KindParse, Line: line, Err: err}
		}
		if computed != ev.EventHash {
			return "", &VerifyError{Kind: KindHashMismatch, Line: line}
		}

		prev = ev.EventHash
	}
	if err := sc.Err(); err != nil {
		return "", &VerifyError{Kind: KindIO, Err: err}
	}

	if expectedHead != "" && expectedHead != prev {
		return "", &VerifyError{
			Kind:   KindHeadMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", expectedHead, prev),
		}
	}
	return prev, nil
}
