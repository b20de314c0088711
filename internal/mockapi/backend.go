// Package mockapi is an in-memory stand-in for the PulsePH REST backend.
package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/pulseph/internal/geo"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
)

var (
	ErrUnknownLGU = errors.New("unknown lgu")
	ErrNoMessages = errors.New("no messages")
)

// record is one stored announcement for one subscriber.
type record struct {
	data model.MessageData
	read bool
}

// Backend holds users, their LGU subscriptions and delivered messages.
type Backend struct {
	mu       sync.RWMutex
	lgus     []string
	users    map[string][]string // number without "+" -> subscribed LGUs
	messages map[string][]record // number without "+" -> messages, oldest first
	now      func() time.Time
}

// NewBackend creates a backend whose selectable LGUs are names. An empty
// list uses the embedded municipality catalogue.
func NewBackend(names []string) *Backend {
	if len(names) == 0 {
		for _, m := range geo.Municipalities() {
			names = append(names, m.Name)
		}
	}
	lgus := append([]string(nil), names...)
	sort.Strings(lgus)

	return &Backend{
		lgus:     lgus,
		users:    make(map[string][]string),
		messages: make(map[string][]record),
		now:      time.Now,
	}
}

// LGUNames returns the selectable LGU names, sorted.
func (b *Backend) LGUNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.lgus...)
}

// UpsertUser creates a user or replaces their subscriptions.
func (b *Backend) UpsertUser(number string, lgus []string) (created bool) {
	key := phone.PathSegment(number)

	b.mu.Lock()
	defer b.mu.Unlock()
	_, exists := b.users[key]
	b.users[key] = append([]string(nil), lgus...)
	return !exists
}

// Subscriptions returns the LGUs number is subscribed to.
func (b *Backend) Subscriptions(number string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lgus, ok := b.users[phone.PathSegment(number)]
	return append([]string(nil), lgus...), ok
}

// Publish delivers text to every user subscribed to lgu and returns the
// stored record. Matching is case-insensitive.
func (b *Backend) Publish(lgu, text string) (model.MessageData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var recipients []string
	for number, subs := range b.users {
		for _, s := range subs {
			if strings.EqualFold(s, lgu) {
				recipients = append(recipients, number)
				break
			}
		}
	}
	sort.Strings(recipients)

	data := model.MessageData{
		ID:                uuid.NewString(),
		SMSMessage:        text,
		SubscribedNumbers: recipients,
		CreatedAt:         b.now().UTC().Format(time.RFC3339Nano),
	}

	if len(recipients) == 0 && !b.knownLGU(lgu) {
		return model.MessageData{}, ErrUnknownLGU
	}

	for _, number := range recipients {
		b.messages[number] = append(b.messages[number], record{data: data})
	}
	return data, nil
}

func (b *Backend) knownLGU(lgu string) bool {
	for _, name := range b.lgus {
		if strings.EqualFold(name, lgu) {
			return true
		}
	}
	return false
}

// Latest returns the newest message delivered to number.
func (b *Backend) Latest(number string) (model.MessageData, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msgs := b.messages[phone.PathSegment(number)]
	if len(msgs) == 0 {
		return model.MessageData{}, ErrNoMessages
	}
	return msgs[len(msgs)-1].data, nil
}

// MarkRead flags ids as read for number and returns how many matched.
func (b *Backend) MarkRead(number string, ids []string) int {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := phone.PathSegment(number)
	n := 0
	for i := range b.messages[key] {
		if _, ok := want[b.messages[key][i].data.ID]; ok {
			b.messages[key][i].read = true
			n++
		}
	}
	return n
}

// IsRead reports whether message id was marked read by number.
func (b *Backend) IsRead(number, id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.messages[phone.PathSegment(number)] {
		if r.data.ID == id {
			return r.read
		}
	}
	return false
}
