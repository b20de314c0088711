package mockapi

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig is the mock backend's environment configuration.
type ServerConfig struct {
	Addr      string
	LogFormat string
	LogLevel  string
	Router    RouterConfig
	// LGUs overrides the selectable names. Empty uses the catalogue.
	LGUs []string
}

// LoadServerConfig reads MOCKAPI_* variables, after loading a .env file
// from the working directory when one exists.
func LoadServerConfig() (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &ServerConfig{
		Addr:      getEnv("MOCKAPI_ADDR", ":8000"),
		LogFormat: getEnv("MOCKAPI_LOG_FORMAT", "text"),
		LogLevel:  getEnv("MOCKAPI_LOG_LEVEL", "info"),
		Router: RouterConfig{
			RequestsPerSecond: getEnvFloat("MOCKAPI_RPS", 20),
			Burst:             getEnvInt("MOCKAPI_BURST", 40),
		},
		LGUs: splitList(os.Getenv("MOCKAPI_LGUS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values LoadServerConfig cannot default.
func (c *ServerConfig) Validate() error {
	if !strings.Contains(c.Addr, ":") {
		return errors.New("MOCKAPI_ADDR must contain a port like ':8000'")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("MOCKAPI_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Router.RequestsPerSecond < 0 {
		return errors.New("MOCKAPI_RPS must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
