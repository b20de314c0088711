// Package demo provides an in-memory message source used when the backend
// is unreachable.
package demo

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/nhle/pulseph/internal/model"
)

// OnboardingText is the announcement delivered on the first fetch.
const OnboardingText = "🚨 CLASS SUSPENSION ALERT: All classes in Marikina City are suspended for today, November 15, 2024 due to heavy rainfall and flooding in several areas. Stay safe! - PulsePH"

// Store holds demo messages for one process. The first non-empty fetch
// seeds the onboarding announcement; later fetches return the same list.
type Store struct {
	mu       sync.Mutex
	messages []model.Message
	counter  int
	seeded   bool
	now      func() time.Time
}

// NewStore creates an empty demo store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Fetch implements source.Fetcher.
func (s *Store) Fetch(_ context.Context, phoneNumber string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phoneNumber == "" {
		return []model.Message{}, nil
	}

	if !s.seeded {
		s.seeded = true
		s.addLocked(OnboardingText)
	}

	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// Add appends an announcement and returns it.
func (s *Store) Add(text string) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(text)
}

func (s *Store) addLocked(text string) model.Message {
	s.counter++
	now := s.now()
	msg := model.Message{
		ID:          strconv.Itoa(s.counter),
		Text:        text,
		Timestamp:   now.Format(model.DisplayTimeLayout),
		IsDelivered: true,
		CreatedAt:   now.UTC().Format(time.RFC3339Nano),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// MarkMessagesRead flips isRead on the given ids. Unknown ids are ignored.
func (s *Store) MarkMessagesRead(_ context.Context, _ string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for i := range s.messages {
		if _, ok := want[s.messages[i].ID]; ok {
			s.messages[i].IsRead = true
		}
	}
	return nil
}

// Owned returns the subset of ids this store has served, in input order.
func (s *Store) Owned(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	have := make(map[string]struct{}, len(s.messages))
	for _, m := range s.messages {
		have[m.ID] = struct{}{}
	}
	var out []string
	for _, id := range ids {
		if _, ok := have[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
