package toast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/model"
)

func items(ids ...string) []model.Notification {
	out := make([]model.Notification, len(ids))
	for i, id := range ids {
		out[i] = model.Notification{ID: id, Title: "PulsePH", Message: "msg " + id}
	}
	return out
}

func TestEmptyStack(t *testing.T) {
	m := New(30)
	assert.Equal(t, "", m.View())
	_, ok := m.Focused()
	assert.False(t, ok)
	m.Next()
	assert.Equal(t, 0, m.Len())
}

func TestNextWraps(t *testing.T) {
	m := New(30)
	m.SetItems(items("a", "b"))

	n, ok := m.Focused()
	require.True(t, ok)
	assert.Equal(t, "a", n.ID)

	m.Next()
	n, _ = m.Focused()
	assert.Equal(t, "b", n.ID)

	m.Next()
	n, _ = m.Focused()
	assert.Equal(t, "a", n.ID)
}

func TestFocusFollowsIDAcrossSnapshots(t *testing.T) {
	m := New(30)
	m.SetItems(items("a", "b", "c"))
	m.Next()

	// "a" expired; "b" keeps focus.
	m.SetItems(items("b", "c"))
	n, ok := m.Focused()
	require.True(t, ok)
	assert.Equal(t, "b", n.ID)

	// Focused toast gone; focus falls back to the first.
	m.SetItems(items("c"))
	n, _ = m.Focused()
	assert.Equal(t, "c", n.ID)
}

func TestViewShowsNewestAndOverflow(t *testing.T) {
	m := New(30)
	m.SetItems(items("1", "2", "3", "4"))

	out := m.View()
	assert.Contains(t, out, "msg 4")
	assert.Contains(t, out, "msg 2")
	assert.NotContains(t, out, "msg 1")
	assert.Contains(t, out, "+1 more")
}

func TestClickableHint(t *testing.T) {
	m := New(30)
	m.SetItems([]model.Notification{{
		ID: "x", Title: "PulsePH", Message: "Flood warning",
		ClickAction: model.ClickActionNavigate, NavigateTo: "/messages",
	}})
	assert.Contains(t, m.View(), "enter to open")
}
