// Package sync polls a message source and merges results into the
// conversation shown to the user.
package sync

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/source"
)

// State is the scheduler state of a Poller.
type State int

const (
	StateIdle State = iota
	StatePolling
)

func (s State) String() string {
	if s == StatePolling {
		return "polling"
	}
	return "idle"
}

// Defaults applied to zero-valued Options.
const (
	DefaultInterval = 5 * time.Second

	// NewMessageNotificationDuration is how long a new-message toast stays up.
	NewMessageNotificationDuration = 6 * time.Second

	// NotificationTitle titles every new-message toast.
	NotificationTitle = "PulsePH"

	// MessagesRoute is where new-message toasts navigate on click.
	MessagesRoute = "/messages"
)

// fetchTimeout is the maximum time allowed for a single fetch operation.
// Stop does not cancel it; late results still merge.
const fetchTimeout = 30 * time.Second

// ErrNoReadMarker is returned by MarkAsRead when no marker is configured.
var ErrNoReadMarker = errors.New("mark-read is not available")

// ReadMarker marks messages read on the backend.
type ReadMarker interface {
	MarkMessagesRead(ctx context.Context, number string, ids []string) error
}

// Notifier shows a toast and returns its id.
type Notifier interface {
	Show(data model.NotificationData) string
}

// Cache persists the merged conversation per phone number.
type Cache interface {
	GetMessages(ctx context.Context, owner string) ([]model.Message, error)
	UpsertMessages(ctx context.Context, owner string, msgs []model.Message) error
	MarkMessagesRead(ctx context.Context, owner string, ids []string) error
}

// Options configures a Poller.
type Options struct {
	// Interval between ticks. Zero means DefaultInterval.
	Interval time.Duration

	AutoMarkRead      bool
	ShowNotifications bool

	// Marker receives explicit and automatic mark-read calls.
	Marker ReadMarker

	// Notifier receives new-message toasts when ShowNotifications is set.
	Notifier Notifier

	// Cache, when set, seeds the list and stores merged messages.
	Cache Cache

	Logger *slog.Logger
}

// ResultMsg is a tea.Msg sent after every fetch or mark-read.
type ResultMsg struct {
	Messages []model.Message
	Added    int
	Err      string
}

// Poller runs the message fetcher on a fixed interval and keeps the merged
// conversation. All exported methods are safe for concurrent use.
type Poller struct {
	fetcher source.Fetcher
	opts    Options
	logger  *slog.Logger

	resultCh chan ResultMsg
	pending  gosync.WaitGroup

	mu          gosync.Mutex
	markOnFetch bool
	phone       string
	messages    []model.Message
	errMsg      string
	loading     bool
	initialLoad bool
	state       State
	stopCh      chan struct{}
}

// New creates an idle Poller.
func New(fetcher source.Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:     fetcher,
		opts:        opts,
		logger:      logger,
		resultCh:    make(chan ResultMsg, 16),
		markOnFetch: opts.AutoMarkRead,
		initialLoad: true,
		loading:     true,
	}
}

// SetAutoMarkRead toggles marking fetched unread messages as read. Headless
// commands turn it off so that only an explicit read marks anything.
func (p *Poller) SetAutoMarkRead(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markOnFetch = on
}

// SetPhoneNumber switches the conversation to number. A non-empty number
// triggers an immediate fetch and starts polling; an empty one stops it.
func (p *Poller) SetPhoneNumber(number string) {
	p.mu.Lock()
	if number == p.phone {
		p.mu.Unlock()
		return
	}
	p.phone = number
	p.messages = nil
	p.errMsg = ""
	p.initialLoad = true
	p.loading = number != ""
	p.mu.Unlock()

	if number == "" {
		p.Stop()
		return
	}

	p.seedFromCache(number)

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.runTick()
	}()
	p.Start()
}

// PhoneNumber returns the current conversation owner.
func (p *Poller) PhoneNumber() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phone
}

// Start moves idle to polling. It is a no-op when already polling.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePolling {
		return
	}
	p.state = StatePolling
	p.stopCh = make(chan struct{})
	go p.loop(p.stopCh)
}

// Stop moves polling to idle. In-flight fetches are not aborted.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePolling {
		return
	}
	close(p.stopCh)
	p.stopCh = nil
	p.state = StateIdle
}

// SetVisible pauses polling while the UI is hidden and resumes it when
// the UI is shown again and a phone number is set.
func (p *Poller) SetVisible(visible bool) {
	if !visible {
		p.Stop()
		return
	}
	if p.PhoneNumber() != "" {
		p.Start()
	}
}

// Close stops polling and waits for background work (initial fetch,
// automatic mark-read) to finish.
func (p *Poller) Close() {
	p.Stop()
	p.pending.Wait()
}

// Tick runs one fetch and merge step.
func (p *Poller) Tick(ctx context.Context) error {
	return p.fetchAndMerge(ctx)
}

// Refetch runs a manual fetch outside the timer.
func (p *Poller) Refetch(ctx context.Context) error {
	return p.fetchAndMerge(ctx)
}

// MarkAsRead marks ids read on the backend, then locally. On failure the
// error is recorded and local state is left unchanged.
func (p *Poller) MarkAsRead(ctx context.Context, ids []string) error {
	const op = "sync.Poller.MarkAsRead"

	p.mu.Lock()
	number := p.phone
	p.errMsg = ""
	p.mu.Unlock()

	var err error
	if p.opts.Marker == nil {
		err = ErrNoReadMarker
	} else {
		err = p.opts.Marker.MarkMessagesRead(ctx, number, ids)
	}
	if err != nil {
		p.logger.Error("marking messages as read failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
		p.mu.Lock()
		p.errMsg = err.Error()
		p.mu.Unlock()
		p.sendResult(0)
		return err
	}

	p.applyRead(ctx, number, ids)
	p.sendResult(0)
	return nil
}

// AppendLocal adds a message authored on this device (e.g. a reply typed
// in the inbox). It never notifies.
func (p *Poller) AppendLocal(msg model.Message) {
	p.mu.Lock()
	number := p.phone
	p.messages, _ = MergeMessages(p.messages, []model.Message{msg})
	p.mu.Unlock()

	if p.opts.Cache != nil && number != "" {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := p.opts.Cache.UpsertMessages(ctx, number, []model.Message{msg}); err != nil {
			p.logger.Warn("caching local message failed",
				slog.String("op", "sync.Poller.AppendLocal"),
				slog.Any("error", err),
			)
		}
	}
	p.sendResult(0)
}

// Messages returns a snapshot of the merged conversation.
func (p *Poller) Messages() []model.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Error returns the last displayable error, or "".
func (p *Poller) Error() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// State returns the scheduler state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Loading reports whether the initial load is still in progress.
func (p *Poller) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// WaitForNextResult returns a tea.Cmd that waits for the next ResultMsg.
// It should be re-issued after each ResultMsg is handled.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// loop ticks on the configured interval until stop is closed.
func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.runTick()
		}
	}
}

func (p *Poller) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	_ = p.fetchAndMerge(ctx)
}

// fetchAndMerge performs one fetch. The merge, the new-message detection
// and the first-fetch flag update happen under one lock so overlapping
// calls cannot notify the same id twice.
func (p *Poller) fetchAndMerge(ctx context.Context) error {
	const op = "sync.Poller.fetchAndMerge"

	p.mu.Lock()
	number := p.phone
	p.mu.Unlock()

	fetched, err := p.fetcher.Fetch(ctx, number)

	p.mu.Lock()
	if number != p.phone {
		// The conversation changed while the request was in flight.
		p.mu.Unlock()
		return nil
	}
	wasInitial := p.initialLoad
	p.initialLoad = false
	p.loading = false

	if err != nil {
		p.errMsg = err.Error()
		p.mu.Unlock()

		p.logger.Error("fetching messages failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
		p.sendResult(0)
		return err
	}

	p.errMsg = ""
	merged, added := MergeMessages(p.messages, fetched)
	p.messages = merged

	var toNotify []model.Message
	if p.opts.ShowNotifications && !wasInitial {
		for _, m := range added {
			if !m.IsFromUser {
				toNotify = append(toNotify, m)
			}
		}
	}

	var unread []string
	if p.markOnFetch {
		unread = UnreadIDs(merged)
	}
	p.mu.Unlock()

	if p.opts.Cache != nil && len(added) > 0 {
		if err := p.opts.Cache.UpsertMessages(ctx, number, added); err != nil {
			p.logger.Warn("caching messages failed",
				slog.String("op", op),
				slog.Any("error", err),
			)
		}
	}

	if p.opts.Notifier != nil {
		for _, m := range toNotify {
			p.opts.Notifier.Show(model.NotificationData{
				Title:       NotificationTitle,
				Message:     m.Text,
				Time:        timeOrNow(m.Timestamp),
				Duration:    NewMessageNotificationDuration,
				ClickAction: model.ClickActionNavigate,
				NavigateTo:  MessagesRoute,
			})
		}
	}

	if len(unread) > 0 && p.opts.Marker != nil {
		p.autoMarkRead(number, unread)
	}

	p.sendResult(len(added))
	return nil
}

// autoMarkRead sends ids to the marker in the background. Failures are
// logged only.
func (p *Poller) autoMarkRead(number string, ids []string) {
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := p.opts.Marker.MarkMessagesRead(ctx, number, ids); err != nil {
			p.logger.Error("auto-marking messages as read failed",
				slog.String("op", "sync.Poller.autoMarkRead"),
				slog.Any("error", err),
			)
			return
		}
		p.applyRead(ctx, number, ids)
		p.sendResult(0)
	}()
}

func (p *Poller) applyRead(ctx context.Context, number string, ids []string) {
	p.mu.Lock()
	if number == p.phone {
		markRead(p.messages, ids)
	}
	p.mu.Unlock()

	if p.opts.Cache != nil {
		if err := p.opts.Cache.MarkMessagesRead(ctx, number, ids); err != nil {
			p.logger.Warn("updating cached read state failed",
				slog.String("op", "sync.Poller.applyRead"),
				slog.Any("error", err),
			)
		}
	}
}

// seedFromCache loads cached messages for number. A non-empty cache counts
// as the initial load, so cached messages never notify.
func (p *Poller) seedFromCache(number string) {
	if p.opts.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cached, err := p.opts.Cache.GetMessages(ctx, number)
	if err != nil {
		p.logger.Warn("loading cached messages failed",
			slog.String("op", "sync.Poller.seedFromCache"),
			slog.Any("error", err),
		)
		return
	}
	if len(cached) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if number != p.phone {
		return
	}
	p.messages, _ = MergeMessages(nil, cached)
	p.initialLoad = false
	p.loading = false
}

// sendResult publishes the current snapshot without blocking.
func (p *Poller) sendResult(added int) {
	p.mu.Lock()
	msg := ResultMsg{
		Messages: make([]model.Message, len(p.messages)),
		Added:    added,
		Err:      p.errMsg,
	}
	copy(msg.Messages, p.messages)
	p.mu.Unlock()

	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func timeOrNow(ts string) string {
	if ts == "" {
		return "now"
	}
	return ts
}
