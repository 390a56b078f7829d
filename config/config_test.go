package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bootsteps/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	resetNetTimeout(t)
	path := writeConfig(t, `
platform:
  organization: acme
  name: ingest-worker
nats:
  url: nats://nats.internal:4222
  connect_timeout: 3s
metrics:
  enabled: true
  addr: ":9100"
net_timeout: 15s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Platform.Organization)
	assert.Equal(t, "ingest-worker", cfg.Platform.Name)
	assert.Equal(t, "nats://nats.internal:4222", cfg.NATS.URL)
	assert.Equal(t, 3*time.Second, cfg.NATS.ConnectTimeout.Std())
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path, "defaults fill unset fields")

	assert.Equal(t, 15*time.Second, DefaultNetTimeout(),
		"net_timeout overrides the process-wide default")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "platform: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid default", func(*Config) {}, nil},
		{"missing nats url", func(c *Config) { c.NATS.URL = "" }, errors.ErrMissingConfig},
		{"metrics enabled without addr", func(c *Config) { c.Metrics.Addr = "" }, errors.ErrMissingConfig},
		{"negative net timeout", func(c *Config) { c.NetTimeout = Duration(-time.Second) }, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.name == "valid default" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			}
		})
	}
}
