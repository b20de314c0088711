// Package authview is the phone number and verification code screen.
package authview

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
	"github.com/nhle/pulseph/internal/theme"
)

// SignedInMsg is dispatched once the code has been verified and the
// session saved.
type SignedInMsg struct {
	Auth model.UserAuth
}

// signInResultMsg carries the outcome of the asynchronous SignIn call.
type signInResultMsg struct {
	auth *model.UserAuth
	err  error
}

// Signer completes a challenge.
type Signer interface {
	SignIn(ctx context.Context, c *auth.Challenge, code string) (*model.UserAuth, error)
}

type stage int

const (
	stagePhone stage = iota
	stageCode
	stageVerifying
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	phone string
	code  string
}

// Model is the Bubble Tea model for the sign-in screen.
type Model struct {
	session   Signer
	form      *huh.Form
	fb        *formBindings
	stage     stage
	challenge *auth.Challenge
	err       string
	width     int
	height    int
}

// New creates a sign-in screen.
func New(session Signer, width, height int) Model {
	return Model{
		session: session,
		fb:      &formBindings{phone: "+63 "},
		width:   width,
		height:  height,
	}
}

// Start resets the screen to the phone number step.
func (m *Model) Start() tea.Cmd {
	m.stage = stagePhone
	m.challenge = nil
	m.err = ""
	m.fb.code = ""
	if m.fb.phone == "" {
		m.fb.phone = "+63 "
	}
	m.form = m.buildPhoneForm()
	return m.form.Init()
}

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signInResultMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.stage = stageCode
			m.fb.code = ""
			m.form = m.buildCodeForm()
			return m, m.form.Init()
		}
		a := *msg.auth
		return m, func() tea.Msg { return SignedInMsg{Auth: a} }

	case tea.KeyMsg:
		if msg.String() == "esc" && m.stage == stageCode {
			return m, m.Start()
		}
	}

	if m.form == nil || m.stage == stageVerifying {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		switch m.stage {
		case stagePhone:
			return m, m.beginChallenge(m.fb.phone)
		case stageCode:
			return m, m.verify(m.fb.code)
		}
	}

	return m, cmd
}

// beginChallenge creates the verification challenge for number and moves
// to the code step.
func (m *Model) beginChallenge(number string) tea.Cmd {
	c, err := auth.NewChallenge(number)
	if err != nil {
		m.err = err.Error()
		m.form = m.buildPhoneForm()
		return m.form.Init()
	}

	m.challenge = c
	m.err = ""
	m.stage = stageCode
	m.fb.code = ""
	m.form = m.buildCodeForm()
	return m.form.Init()
}

// verify checks code asynchronously through the session.
func (m *Model) verify(code string) tea.Cmd {
	m.stage = stageVerifying
	s := m.session
	c := m.challenge
	code = strings.TrimSpace(code)
	return func() tea.Msg {
		a, err := s.SignIn(context.Background(), c, code)
		return signInResultMsg{auth: a, err: err}
	}
}

// View renders the sign-in screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Welcome to PulsePH")
	subtitle := theme.HelpStyle.Render("Local government announcements, delivered like a text.")

	parts := []string{title, subtitle, ""}

	switch m.stage {
	case stageCode, stageVerifying:
		if m.challenge != nil {
			parts = append(parts,
				fmt.Sprintf("We sent a code to %s", phone.FormatDisplay(m.challenge.PhoneNumber)),
				theme.WarningStyle.Render(fmt.Sprintf("Demo code: %s", m.challenge.DemoCode())),
				"",
			)
		}
	}

	if m.err != "" {
		parts = append(parts, theme.ErrorBannerStyle.Render(m.err), "")
	}

	if m.stage == stageVerifying {
		parts = append(parts, theme.HelpStyle.Render("Verifying..."))
	} else if m.form != nil {
		parts = append(parts, m.form.View())
	}

	if m.stage == stageCode {
		parts = append(parts, theme.HelpStyle.Render("esc to change number"))
	}

	return theme.PanelStyle.
		Width(m.formWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildPhoneForm() *huh.Form {
	fb := m.fb
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mobile number").
				Placeholder("+63 9XX XXX XXXX").
				Value(&fb.phone).
				DescriptionFunc(func() string {
					return phone.FormatAsTyped(fb.phone)
				}, &fb.phone).
				Validate(phone.Validate),
		),
	).WithWidth(m.formWidth() - 4).WithShowHelp(false)
}

func (m *Model) buildCodeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Verification code").
				Placeholder("6-digit code").
				CharLimit(auth.CodeLength).
				Value(&m.fb.code).
				Validate(auth.ValidateCodeInput),
		),
	).WithWidth(m.formWidth() - 4).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 70 {
		w = 70
	}
	return w
}
