package sync

import (
	"sort"

	"github.com/nhle/pulseph/internal/model"
)

// MergeMessages combines a fetched batch into the existing list. Incoming
// messages whose id is already present (in existing or earlier in the
// batch) are dropped. The result is stably sorted by CreatedAt, oldest
// first. added holds the survivors in batch order.
func MergeMessages(existing, incoming []model.Message) (merged, added []model.Message) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged = make([]model.Message, 0, len(existing)+len(incoming))

	for _, m := range existing {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range incoming {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
		added = append(added, m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedTime().Before(merged[j].CreatedTime())
	})

	return merged, added
}

// UnreadIDs returns the ids of unread messages not authored by the user.
func UnreadIDs(msgs []model.Message) []string {
	var ids []string
	for _, m := range msgs {
		if !m.IsRead && !m.IsFromUser {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// markRead flips IsRead on the given ids in place.
func markRead(msgs []model.Message, ids []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for i := range msgs {
		if _, ok := want[msgs[i].ID]; ok {
			msgs[i].IsRead = true
		}
	}
}
