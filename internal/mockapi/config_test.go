package mockapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	for _, k := range []string{"MOCKAPI_ADDR", "MOCKAPI_LOG_FORMAT", "MOCKAPI_RPS", "MOCKAPI_BURST", "MOCKAPI_LGUS"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 20.0, cfg.Router.RequestsPerSecond)
	assert.Equal(t, 40, cfg.Router.Burst)
	assert.Empty(t, cfg.LGUs)
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Setenv("MOCKAPI_ADDR", "127.0.0.1:9100")
	t.Setenv("MOCKAPI_LOG_FORMAT", "json")
	t.Setenv("MOCKAPI_RPS", "2.5")
	t.Setenv("MOCKAPI_BURST", "not-a-number")
	t.Setenv("MOCKAPI_LGUS", "Manila, Noveleta,,General Trias ")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2.5, cfg.Router.RequestsPerSecond)
	assert.Equal(t, 40, cfg.Router.Burst)
	assert.Equal(t, []string{"Manila", "Noveleta", "General Trias"}, cfg.LGUs)
}

func TestServerConfigValidate(t *testing.T) {
	t.Setenv("MOCKAPI_ADDR", "8000")
	_, err := LoadServerConfig()
	assert.ErrorContains(t, err, "MOCKAPI_ADDR")

	cfg := &ServerConfig{Addr: ":8000", LogFormat: "xml"}
	assert.ErrorContains(t, cfg.Validate(), "MOCKAPI_LOG_FORMAT")

	cfg = &ServerConfig{Addr: ":8000", LogFormat: "text", Router: RouterConfig{RequestsPerSecond: -1}}
	assert.ErrorContains(t, cfg.Validate(), "MOCKAPI_RPS")
}
