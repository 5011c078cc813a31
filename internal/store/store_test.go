package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wybxc/zamuza/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func firing(token string, seq int64) engine.Firing {
	return engine.Firing{
		RunToken:    token,
		Seq:         seq,
		Rule:        "Era >< S(#x) => #x -> Era",
		LeftSymbol:  "Era",
		RightSymbol: "S",
		LeftNode:    "n1.0",
		RightNode:   "n2.0",
		Allocated:   1,
		Enqueued:    1,
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1")) // NORMAL
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestRecordFiring_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := []engine.Firing{firing("run-a", 1), firing("run-a", 2), firing("run-a", 3)}
	for _, f := range want {
		require.NoError(t, s.RecordFiring(ctx, f))
	}

	got, err := s.ReadFirings(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecordFiring_DuplicateSeqIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordFiring(ctx, firing("run-a", 1)))

	dup := firing("run-a", 1)
	dup.Rule = "something else"
	require.NoError(t, s.RecordFiring(ctx, dup), "re-delivery must not fail the run")

	got, err := s.ReadFirings(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Era >< S(#x) => #x -> Era", got[0].Rule, "first write wins")
}

func TestReadFirings_UnknownRunIsEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ReadFirings(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRuns_GroupsAndOrders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordFiring(ctx, firing("run-b", 1)))
	require.NoError(t, s.RecordFiring(ctx, firing("run-a", 1)))
	require.NoError(t, s.RecordFiring(ctx, firing("run-a", 2)))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []RunSummary{
		{Token: "run-a", Firings: 2},
		{Token: "run-b", Firings: 1},
	}, runs)
}

func TestLatestRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	token, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "empty journal has no latest run")

	require.NoError(t, s.RecordFiring(ctx, firing("run-a", 1)))
	require.NoError(t, s.RecordFiring(ctx, firing("run-b", 1)))

	token, err = s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-b", token)
}
