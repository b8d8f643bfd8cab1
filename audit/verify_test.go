package audit_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeready/ledger/audit"
)

// makeEvent builds a correctly hashed event on top of prev.
func makeEvent(t *testing.T, prev string, seq int, payload string) audit.AuditEvent {
	t.Helper()
	e := audit.AuditEvent{
		EventID:   fmt.Sprintf("event-%d", seq),
		CreatedAt: fmt.Sprintf("2026-02-03T12:00:%02dZ", seq),
		PrevHash:  prev,
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "case.update",
			Tier:             audit.TierGreen,
			Payload:          json.RawMessage(payload),
		},
	}
	h, err := audit.ComputeEventHash(prev, e)
	require.NoError(t, err)
	e.EventHash = h
	return e
}

func makeChain(t *testing.T, n int) []audit.AuditEvent {
	t.Helper()
	prev := audit.GenesisHash
	events := make([]audit.AuditEvent, 0, n)
	for i := 0; i < n; i++ {
		e := makeEvent(t, prev, i+1, fmt.Sprintf(`{"seq":%d}`, i+1))
		events = append(events, e)
		prev = e.EventHash
	}
	return events
}

func chainText(t *testing.T, events ...audit.AuditEvent) string {
	t.Helper()
	var b strings.Builder
	for _, e := range events {
		line, err := json.Marshal(e)
		require.NoError(t, err)
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func requireKind(t *testing.T, err error, kind audit.ErrorKind, line int) {
	t.Helper()
	require.Error(t, err)
	var ve *audit.VerifyError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, kind, ve.Kind)
	if line > 0 {
		require.Equal(t, line, ve.Line)
	}
}

func TestVerifyChainAcceptsValidChain(t *testing.T) {
	events := makeChain(t, 3)
	head, err := audit.VerifyChain(strings.NewReader(chainText(t, events...)), "")
	require.NoError(t, err)
	require.Equal(t, events[2].EventHash, head)
}

func TestVerifyChainSkipsBlankLines(t *testing.T) {
	events := makeChain(t, 2)
	text := "\n" + chainText(t, events[0]) + "   \n" + chainText(t, events[1]) + "\n\n"
	head, err := audit.VerifyChain(strings.NewReader(text), "")
	require.NoError(t, err)
	require.Equal(t, events[1].EventHash, head)
}

func TestVerifyChainEmptyInputReturnsGenesis(t *testing.T) {
	head, err := audit.VerifyChain(strings.NewReader(""), "")
	require.NoError(t, err)
	require.Equal(t, audit.GenesisHash, head)
}

func TestVerifyChainRejectsNonGenesisFirstEvent(t *testing.T) {
	bad := strings.Repeat("1", 64)
	e := makeEvent(t, bad, 1, `{"seq":1}`)
	_, err := audit.VerifyChain(strings.NewReader(chainText(t, e)), "")
	requireKind(t, err, audit.KindChainBreak, 1)
}

func TestVerifyChainDetectsContentTampering(t *testing.T) {
	e := makeEvent(t, audit.GenesisHash, 1, `{"ok":true}`)
	line := chainText(t, e)
	tampered := strings.Replace(line, `"ok":true`, `"ok":false`, 1)
	require.NotEqual(t, line, tampered)

	_, err := audit.VerifyChain(strings.NewReader(tampered), "")
	requireKind(t, err, audit.KindHashMismatch, 1)
}

func TestVerifyChainDetectsDeletedMiddleEvent(t *testing.T) {
	events := makeChain(t, 3)
	text := chainText(t, events[0], events[2])
	_, err := audit.VerifyChain(strings.NewReader(text), "")
	requireKind(t, err, audit.KindChainBreak, 2)
}

func TestVerifyChainDetectsReorderedEvents(t *testing.T) {
	events := makeChain(t, 2)
	text := chainText(t, events[1], events[0])
	_, err := audit.VerifyChain(strings.NewReader(text), "")
	requireKind(t, err, audit.KindChainBreak, 1)
}

func TestVerifyChainHeadAgreement(t *testing.T) {
	events := makeChain(t, 2)
	text := chainText(t, events...)

	head, err := audit.VerifyChain(strings.NewReader(text), events[1].EventHash)
	require.NoError(t, err)
	require.Equal(t, events[1].EventHash, head)

	other := strings.Repeat("ab", 32)
	_, err = audit.VerifyChain(strings.NewReader(text), other)
	requireKind(t, err, audit.KindHeadMismatch, 0)
	require.Contains(t, err.Error(), other)
}

func TestVerifyChainReportsParseFailures(t *testing.T) {
	events := makeChain(t, 1)
	text := chainText(t, events...) + "{not json\n"
	_, err := audit.VerifyChain(strings.NewReader(text), "")
	requireKind(t, err, audit.KindParse, 2)
}

func TestVerifyChainFileMissingFileIsIOFailure(t *testing.T) {
	_, err := audit.VerifyChainFile("/nonexistent/audit.jsonl", "")
	requireKind(t, err, audit.KindIO, 0)
	require.True(t, audit.IsKind(err, audit.KindIO))
	require.False(t, audit.IsKind(err, audit.KindChainBreak))
}

func TestVerifyChainCountsBlankLinesInLineNumbers(t *testing.T) {
	e := makeEvent(t, strings.Repeat("2", 64), 1, `{"seq":1}`)
	text := "\n\n" + chainText(t, e)
	_, err := audit.VerifyChain(strings.NewReader(text), "")
	requireKind(t, err, audit.KindChainBreak, 3)
}
