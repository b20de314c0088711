package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/pulseph/internal/model"
)

func msg(id, createdAt string) model.Message {
	return model.Message{ID: id, Text: "text " + id, CreatedAt: createdAt}
}

func ids(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestMergeMessagesDropsKnownIDs(t *testing.T) {
	existing := []model.Message{msg("a", "2025-01-01T08:00:00Z")}
	incoming := []model.Message{
		msg("a", "2025-01-01T09:00:00Z"),
		msg("b", "2025-01-01T07:00:00Z"),
	}

	merged, added := MergeMessages(existing, incoming)
	assert.Equal(t, []string{"b", "a"}, ids(merged))
	assert.Equal(t, []string{"b"}, ids(added))
	// The existing copy wins.
	assert.Equal(t, "2025-01-01T08:00:00Z", merged[1].CreatedAt)
}

func TestMergeMessagesDeduplicatesWithinBatch(t *testing.T) {
	merged, added := MergeMessages(nil, []model.Message{
		msg("x", "2025-01-01T08:00:00Z"),
		msg("x", "2025-01-01T08:00:00Z"),
	})
	assert.Len(t, merged, 1)
	assert.Len(t, added, 1)
}

func TestMergeMessagesIsIdempotent(t *testing.T) {
	batch := []model.Message{
		msg("m2", "2025-01-01T10:00:00Z"),
		msg("m1", "2025-01-01T09:00:00Z"),
	}

	once, _ := MergeMessages(nil, batch)
	twice, added := MergeMessages(once, batch)
	assert.Equal(t, once, twice)
	assert.Empty(t, added)
}

func TestMergeMessagesStableForEqualTimestamps(t *testing.T) {
	ts := "2025-01-01T10:00:00Z"
	merged, _ := MergeMessages(
		[]model.Message{msg("first", ts)},
		[]model.Message{msg("second", ts), msg("third", ts)},
	)
	assert.Equal(t, []string{"first", "second", "third"}, ids(merged))
}

func TestMergeMessagesUnparseableSortFirst(t *testing.T) {
	merged, _ := MergeMessages(
		[]model.Message{msg("dated", "2025-01-01T10:00:00Z")},
		[]model.Message{msg("undated", "")},
	)
	assert.Equal(t, []string{"undated", "dated"}, ids(merged))
}

func TestUnreadIDsSkipsUserAndRead(t *testing.T) {
	msgs := []model.Message{
		{ID: "1"},
		{ID: "2", IsRead: true},
		{ID: "3", IsFromUser: true},
		{ID: "4"},
	}
	assert.Equal(t, []string{"1", "4"}, UnreadIDs(msgs))

	markRead(msgs, []string{"4"})
	assert.True(t, msgs[3].IsRead)
	assert.False(t, msgs[0].IsRead)
}
