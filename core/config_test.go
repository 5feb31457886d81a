package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvPrefix = "CALREMEDIATE_TEST_"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfigLoader_Defaults(t *testing.T) {
	cfg, err := NewConfigLoader(
		WithoutDotenv(),
		WithEnvPrefix(testEnvPrefix),
		WithConfigFile(""),
	).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigLoader_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
provider: Graph
page_size: 20
credentials:
  tenant_id: tenant-from-file
  client_id: client-from-file
  client_secret: secret-from-file
graph:
  base_url: https://graph.example.test/v1.0
`)
	t.Setenv(testEnvPrefix+"CREDENTIALS__CLIENT_SECRET", "secret-from-env")
	t.Setenv(testEnvPrefix+"PAGE_SIZE", "40")

	cfg, err := NewConfigLoader(WithoutDotenv(), WithEnvPrefix(testEnvPrefix), WithConfigFile(path)).Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGraph, cfg.Provider)
	assert.Equal(t, 40, cfg.PageSize)
	assert.Equal(t, "tenant-from-file", cfg.Credentials.TenantID)
	assert.Equal(t, "secret-from-env", cfg.Credentials.ClientSecret)
	assert.Equal(t, "https://graph.example.test/v1.0", cfg.Graph.BaseURL)
	assert.Equal(t, defaultAuthorityURL, cfg.Graph.AuthorityURL)
	assert.NoError(t, cfg.Validate())
}

func TestConfigLoader_MissingExplicitFile(t *testing.T) {
	_, err := NewConfigLoader(WithoutDotenv(), WithEnvPrefix(testEnvPrefix),
		WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigLoader_BadYAML(t *testing.T) {
	path := writeConfig(t, "credentials: [unterminated")
	_, err := NewConfigLoader(WithoutDotenv(), WithEnvPrefix(testEnvPrefix), WithConfigFile(path)).Load()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials.tenant_id")
	assert.Contains(t, err.Error(), "credentials.client_id")
	assert.Contains(t, err.Error(), "credentials.client_secret")

	cfg.Provider = ProviderGoogle
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service_account")

	cfg.Google.ServiceAccountFile = "sa.json"
	assert.NoError(t, cfg.Validate())

	cfg.PageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = "exchange"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownProvider)
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Credentials = Credentials{TenantID: "t", ClientID: "c", ClientSecret: "s"}
	p, err := NewProvider(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderGraph, p.Name())

	path := writeConfig(t, fakeServiceAccount)
	cfg.Provider = ProviderGoogle
	cfg.Google.ServiceAccountFile = path
	p, err = NewProvider(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, p.Name())

	cfg.Provider = "nope"
	_, err = NewProvider(cfg, quietLogger())
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestPrettyJSON(t *testing.T) {
	out, err := PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)
}
