// Package onboarding is the LGU subscription screen shown after sign-in
// and whenever the user edits their locations.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/geo"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
	"github.com/nhle/pulseph/internal/theme"
)

// requestTimeout bounds the LGU list and POST /users calls.
const requestTimeout = 15 * time.Second

// CompletedMsg is dispatched once the subscriptions are saved on the
// backend and locally.
type CompletedMsg struct {
	Profile model.UserProfile
}

// CancelMsg is dispatched when a returning user backs out without saving.
type CancelMsg struct{}

// optionsLoadedMsg carries the selectable names and the detected LGU.
type optionsLoadedMsg struct {
	names    []string
	detected string
	geoErr   string
}

// savedMsg carries the outcome of the save step.
type savedMsg struct {
	profile *model.UserProfile
	err     error
}

// Directory is the backend surface onboarding needs.
type Directory interface {
	LocationNames(ctx context.Context) []string
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.CreateUserResponse, error)
}

// ProfileSaver records completed onboarding locally.
type ProfileSaver interface {
	CompleteOnboarding(ctx context.Context, locations []string) (*model.UserProfile, error)
}

type stage int

const (
	stageLoading stage = iota
	stageSelect
	stageConfirm
	stageSaving
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	selected []string
	confirm  bool
}

// Model is the Bubble Tea model for the onboarding screen.
type Model struct {
	dir       Directory
	saver     ProfileSaver
	form      *huh.Form
	fb        *formBindings
	spinner   spinner.Model
	stage     stage
	names     []string
	detected  string
	geoErr    string
	err       string
	phone     string
	coord     *model.Coordinate
	returning bool
	width     int
	height    int
}

// New creates an onboarding screen.
func New(dir Directory, saver ProfileSaver, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		dir:     dir,
		saver:   saver,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start loads the options for phoneNumber. existing holds the user's saved
// locations; when non-empty the screen opens on the confirmation step.
// coord, when set, is matched to the nearest municipality.
func (m *Model) Start(phoneNumber string, existing []string, coord *model.Coordinate) tea.Cmd {
	m.phone = phoneNumber
	m.coord = coord
	m.returning = len(existing) > 0
	m.fb.selected = append([]string(nil), existing...)
	m.fb.confirm = true
	m.err = ""
	m.geoErr = ""
	m.detected = ""
	m.form = nil
	m.stage = stageLoading
	return tea.Batch(m.spinner.Tick, m.loadOptions())
}

// Returning reports whether the user had already completed onboarding.
func (m Model) Returning() bool {
	return m.returning
}

// Update handles messages for the onboarding screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsLoadedMsg:
		m.applyOptions(msg)
		if m.returning && len(m.fb.selected) > 0 {
			return m, m.showConfirm()
		}
		return m, m.showSelect()

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, m.showConfirm()
		}
		p := *msg.profile
		return m, func() tea.Msg { return CompletedMsg{Profile: p} }

	case spinner.TickMsg:
		if m.stage != stageLoading && m.stage != stageSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			switch {
			case m.stage == stageConfirm:
				return m, m.showSelect()
			case m.stage == stageSelect && m.returning:
				return m, func() tea.Msg { return CancelMsg{} }
			}
		}
	}

	if m.form == nil || m.stage == stageLoading || m.stage == stageSaving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		switch m.stage {
		case stageSelect:
			if len(m.fb.selected) == 0 {
				m.err = auth.ErrNoLocations.Error()
				return m, m.showSelect()
			}
			m.err = ""
			return m, m.showConfirm()
		case stageConfirm:
			if !m.fb.confirm {
				return m, m.showSelect()
			}
			return m, m.save()
		}
	}

	return m, cmd
}

// applyOptions installs the loaded names and pre-selects the detected LGU.
func (m *Model) applyOptions(msg optionsLoadedMsg) {
	m.names = msg.names
	m.detected = msg.detected
	m.geoErr = msg.geoErr

	if m.detected != "" && !slices.Contains(m.names, m.detected) {
		m.names = append([]string{m.detected}, m.names...)
	}
	if m.detected != "" && !slices.Contains(m.fb.selected, m.detected) {
		m.fb.selected = append(m.fb.selected, m.detected)
	}
}

func (m *Model) showSelect() tea.Cmd {
	m.stage = stageSelect
	m.fb.confirm = true
	m.form = m.buildSelectForm()
	return m.form.Init()
}

func (m *Model) showConfirm() tea.Cmd {
	m.stage = stageConfirm
	m.fb.confirm = true
	m.form = m.buildConfirmForm()
	return m.form.Init()
}

// loadOptions fetches LGU names and runs location detection.
func (m Model) loadOptions() tea.Cmd {
	dir := m.dir
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg := optionsLoadedMsg{names: dir.LocationNames(ctx)}
		if coord != nil {
			match, err := geo.Detect(*coord)
			if err != nil {
				msg.geoErr = err.Error()
			} else {
				msg.detected = match.Location.Name
			}
		}
		return msg
	}
}

// save posts the subscriptions, then stores the profile.
func (m *Model) save() tea.Cmd {
	m.stage = stageSaving
	m.err = ""

	dir := m.dir
	saver := m.saver
	number := m.phone
	selected := append([]string(nil), m.fb.selected...)

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := SaveProfile(ctx, dir, saver, number, selected)
		return savedMsg{profile: p, err: err}
	})
}

// SaveProfile is the confirm step: POST /users, then the local profile.
// The headless subscribe command shares it.
func SaveProfile(ctx context.Context, dir Directory, saver ProfileSaver, number string, selected []string) (*model.UserProfile, error) {
	if len(selected) == 0 {
		return nil, auth.ErrNoLocations
	}

	resp, err := dir.CreateUser(ctx, model.CreateUserRequest{
		Number:         number,
		SubscribedLGUs: selected,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		msg := "Failed to save user data"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return nil, errors.New(msg)
	}

	return saver.CompleteOnboarding(ctx, selected)
}

// View renders the onboarding screen.
func (m Model) View() string {
	var title, subtitle string
	switch {
	case m.stage == stageConfirm || m.stage == stageSaving:
		title = "Confirm Locations"
		subtitle = "We'll send you notifications for these locations."
	case m.returning:
		title = "Update Your Locations"
		subtitle = "Select a municipality to receive relevant local announcements."
	default:
		title = "Choose Your Locations"
		subtitle = "Select a municipality to receive relevant local announcements."
	}

	parts := []string{
		theme.TitleStyle.Render(title),
		theme.HelpStyle.Render(subtitle),
		"",
	}

	if m.err != "" {
		parts = append(parts, theme.ErrorBannerStyle.Render(m.err), "")
	}
	if m.geoErr != "" {
		parts = append(parts, theme.WarningStyle.Render("Location unavailable: "+m.geoErr), "")
	}
	if m.detected != "" && m.stage == stageSelect {
		parts = append(parts, theme.SuccessStyle.Render("Detected near "+m.detected), "")
	}

	switch m.stage {
	case stageLoading:
		parts = append(parts, m.spinner.View()+" Loading locations...")
	case stageSaving:
		parts = append(parts, m.spinner.View()+" Saving your subscriptions...")
	default:
		if m.form != nil {
			parts = append(parts, m.form.View())
		}
	}

	hint := "enter continue"
	switch {
	case m.stage == stageConfirm:
		hint = "esc change selection"
	case m.stage == stageSelect && m.returning:
		hint = "esc cancel | / filter | x toggle"
	case m.stage == stageSelect:
		hint = "/ filter | x toggle | enter continue"
	}
	parts = append(parts, theme.HelpStyle.Render(hint))

	return theme.PanelStyle.
		Width(m.formWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildSelectForm() *huh.Form {
	opts := make([]huh.Option[string], len(m.names))
	for i, name := range m.names {
		label := name
		if name == m.detected {
			label = name + " (detected)"
		}
		opts[i] = huh.NewOption(label, name).Selected(slices.Contains(m.fb.selected, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Municipalities").
				Options(opts...).
				Filterable(true).
				Height(m.listHeight()).
				Value(&m.fb.selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return auth.ErrNoLocations
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth() - 4).WithShowHelp(false)
}

func (m *Model) buildConfirmForm() *huh.Form {
	var b strings.Builder
	for _, name := range m.fb.selected {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	fmt.Fprintf(&b, "\nAlerts go to %s", phone.FormatDisplay(m.phone))

	affirmative := "Confirm"
	if m.returning {
		affirmative = "Save changes"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Subscribe to these locations?").
				Description(b.String()).
				Affirmative(affirmative).
				Negative("Go back").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth() - 4).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) listHeight() int {
	h := m.height - 14
	if h < 5 {
		h = 5
	}
	return h
}
