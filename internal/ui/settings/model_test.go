package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/model"
)

type fakeSecrets map[string]string

func (f fakeSecrets) Set(key, value string) error {
	f[key] = value
	return nil
}

func baseConfig() model.AppConfig {
	return model.AppConfig{
		API:     model.APIConfig{BaseURL: "http://localhost:8000", TimeoutSec: 10},
		Poll:    model.PollConfig{IntervalMS: 5000, AutoMarkRead: true, ShowNotifications: true},
		Mailbox: model.MailboxConfig{Port: "993", TLS: true, Mailbox: "INBOX"},
	}
}

func okProbe(context.Context, string) error { return nil }

func newStarted(t *testing.T, probe Prober, secrets SecretSetter) (Model, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := New(path, baseConfig(), probe, secrets, 80, 30)
	m.Start()
	return m, path
}

func TestStartFillsBindings(t *testing.T) {
	m, _ := newStarted(t, okProbe, nil)

	assert.Equal(t, ModeForm, m.Mode())
	assert.Equal(t, "http://localhost:8000", m.fb.baseURL)
	assert.Equal(t, "5", m.fb.pollSeconds)
	assert.True(t, m.fb.autoMarkRead)
	assert.Equal(t, "993", m.fb.mailPort)
	assert.Empty(t, m.fb.mailPassword)
}

func TestApplyMergesForm(t *testing.T) {
	m, _ := newStarted(t, okProbe, nil)
	m.fb.baseURL = " https://pulse.example.ph/ "
	m.fb.pollSeconds = "30"
	m.fb.autoMarkRead = false
	m.fb.mailboxEnabled = true
	m.fb.mailHost = "imap.example.ph"

	cfg, err := m.apply()
	require.NoError(t, err)
	assert.Equal(t, "https://pulse.example.ph", cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.Poll.IntervalMS)
	assert.False(t, cfg.Poll.AutoMarkRead)
	assert.True(t, cfg.Mailbox.Enabled)
	assert.Equal(t, "imap.example.ph", cfg.Mailbox.Host)
	assert.Equal(t, 10, cfg.API.TimeoutSec)
}

func TestApplyRejectsBadInterval(t *testing.T) {
	m, _ := newStarted(t, okProbe, nil)
	m.fb.pollSeconds = "0"

	_, err := m.apply()
	assert.Error(t, err)
}

func TestProbeAndSaveWritesConfig(t *testing.T) {
	secrets := fakeSecrets{}
	m, path := newStarted(t, okProbe, secrets)
	m.fb.mailPassword = "s3cret"

	cfg := baseConfig()
	cfg.API.BaseURL = "http://backend.test"
	cfg.Mailbox.Enabled = true
	cfg.Mailbox.Host = "imap.example.ph"

	cmd := m.run(cfg)
	require.NotNil(t, cmd)
	assert.Equal(t, ModeValidating, m.Mode())

	msg := m.probeAndSave(cfg)().(resultMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "s3cret", secrets[credential.KeyMailboxPassword])

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend.test", loaded.API.BaseURL)
	assert.Equal(t, "imap.example.ph", loaded.Mailbox.Host)

	m, cmd = m.Update(msg)
	assert.Equal(t, ModeResult, m.Mode())
	assert.Equal(t, "http://backend.test", m.Config().API.BaseURL)
	require.NotNil(t, cmd)
	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.Equal(t, "http://backend.test", saved.Config.API.BaseURL)
	assert.Contains(t, m.View(), "Saved. Restart pulseph to apply.")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, DoneMsg{}, cmd())
}

func TestProbeFailureDoesNotSave(t *testing.T) {
	probe := func(context.Context, string) error { return errors.New("connection refused") }
	m, path := newStarted(t, probe, nil)

	cfg := baseConfig()
	m.run(cfg)
	msg := m.probeAndSave(cfg)().(resultMsg)
	require.Error(t, msg.err)
	assert.Contains(t, msg.err.Error(), "backend unreachable")
	assert.NoFileExists(t, path)

	m, cmd := m.Update(msg)
	assert.Nil(t, cmd)
	assert.Equal(t, ModeResult, m.Mode())
	assert.Contains(t, m.View(), "r retry")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.Equal(t, ModeValidating, m.Mode())
}

func TestPasswordWithoutKeyring(t *testing.T) {
	m, path := newStarted(t, okProbe, nil)
	m.fb.mailPassword = "s3cret"

	cfg := baseConfig()
	cfg.Mailbox.Enabled = true

	msg := m.probeAndSave(cfg)().(resultMsg)
	assert.ErrorIs(t, msg.err, ErrNoKeyring)
	assert.FileExists(t, path)
}

func TestEscLeavesForm(t *testing.T) {
	m, _ := newStarted(t, okProbe, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, DoneMsg{}, cmd())
}

func TestKeysIgnoredWhileValidating(t *testing.T) {
	m, _ := newStarted(t, okProbe, nil)
	m.run(baseConfig())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, ModeValidating, m.Mode())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:8000"))
	assert.Error(t, validateURL("localhost"))
	assert.Error(t, validateURL(""))
	assert.NoError(t, validatePort("993"))
	assert.Error(t, validatePort("99a"))
	assert.NoError(t, validateSeconds("5"))
	assert.Error(t, validateSeconds("-1"))
	assert.Error(t, validateRequired("Host")(" "))
}
