// Package mailbox reads LGU advisories published by e-mail.
package mailbox

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/pulseph/internal/model"
)

const idPrefix = "mail-"

// latestFetcher is the IMAP surface Source depends on.
type latestFetcher interface {
	FetchLatest(ctx context.Context) (*ParsedMessage, error)
	MarkSeen(ctx context.Context, uids []uint32) error
}

// Source implements source.Fetcher on top of an IMAP mailbox. Each call
// yields at most one message, the newest advisory.
type Source struct {
	client latestFetcher
}

// New creates a mailbox source for the given server settings.
func New(cfg Config) *Source {
	return &Source{client: NewIMAPClient(cfg)}
}

// Fetch implements source.Fetcher. The phone number is not used: every
// advisory in the mailbox is addressed to all subscribers.
func (s *Source) Fetch(ctx context.Context, _ string) ([]model.Message, error) {
	parsed, err := s.client.FetchLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching mailbox advisory: %w", err)
	}
	if parsed == nil {
		return []model.Message{}, nil
	}
	return []model.Message{toMessage(parsed)}, nil
}

// MarkMessagesRead sets \Seen on mailbox messages. Ids that did not come
// from this source are ignored.
func (s *Source) MarkMessagesRead(ctx context.Context, _ string, ids []string) error {
	var uids []uint32
	for _, id := range ids {
		if uid, ok := uidFromID(id); ok {
			uids = append(uids, uid)
		}
	}
	return s.client.MarkSeen(ctx, uids)
}

// toMessage converts a parsed e-mail into a Message from PulsePH.
func toMessage(p *ParsedMessage) model.Message {
	body := strings.TrimSpace(p.TextBody)
	if body == "" && p.HTMLBody != "" {
		body = stripHTML(p.HTMLBody)
	}

	text := p.Envelope.Subject
	switch {
	case text == "":
		text = body
	case body != "":
		text = text + "\n\n" + body
	}
	if p.Envelope.From != "" {
		text += " - " + p.Envelope.From
	}

	created := p.Envelope.Date
	if created.IsZero() {
		created = time.Now()
	}

	seen := false
	for _, f := range p.Envelope.Flags {
		if f == `\Seen` {
			seen = true
		}
	}

	return model.Message{
		ID:          idPrefix + strconv.FormatUint(uint64(p.Envelope.UID), 10),
		Text:        text,
		Timestamp:   created.Local().Format(model.DisplayTimeLayout),
		IsDelivered: true,
		IsRead:      seen,
		CreatedAt:   created.UTC().Format(time.RFC3339Nano),
	}
}

func uidFromID(id string) (uint32, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	uid, err := strconv.ParseUint(strings.TrimPrefix(id, idPrefix), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(uid), true
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
