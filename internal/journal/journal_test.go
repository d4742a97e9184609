package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, "create", "ITPROJ-1", map[string]string{"summary": "a"}))
	require.NoError(t, j.Record(ctx, "comment", "ITPROJ-1", nil))
	require.NoError(t, j.Record(ctx, "transition", "ITPROJ-2",
		map[string]string{"target": "Done"}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	// nil detail is stored as an empty object, not an empty string.
	for _, e := range entries {
		if e.Operation == "comment" {
			assert.Equal(t, "{}", e.Detail)
		}
	}
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(ctx, "update", "ITPROJ-9", nil))
	}

	entries, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestForIssue(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, "create", "ITCM-7", nil))
	require.NoError(t, j.Record(ctx, "update", "ITCM-7", nil))
	require.NoError(t, j.Record(ctx, "create", "ITCM-8", nil))

	entries, err := j.ForIssue(ctx, "ITCM-7")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].Operation)
	assert.Equal(t, "update", entries[1].Operation)
	for _, e := range entries {
		assert.Equal(t, "ITCM-7", e.IssueKey)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, "delete", "ITPROJ-3", nil))
	require.NoError(t, j.Close())

	// Reopening runs migrations again; they must be idempotent.
	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	entries, err := j2.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
