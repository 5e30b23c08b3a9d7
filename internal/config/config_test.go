package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	withHome(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoints)
	assert.NotNil(t, cfg.Endpoints)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := withHome(t)
	cfg := &Config{
		CurrentEndpoint: "mock",
		Endpoints: map[string]EndpointConfig{
			"mock": {URL: "https://example.test/users", VerifyTLS: true, Timeout: 3 * time.Second},
		},
		StateBackend: "sqlite",
		RowsPerPage:  10,
		Locale:       "es",
	}
	require.NoError(t, Save(cfg))

	info, err := os.Stat(filepath.Join(home, configFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	home := withHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName), []byte("endpoints: [\n"), 0600))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestParseEnv(t *testing.T) {
	t.Setenv("USERBOARD_API_URL", "http://localhost:9000/users")
	t.Setenv("USERBOARD_ROWS_PER_PAGE", "5")
	t.Setenv("USERBOARD_TIMEOUT", "2s")
	o, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/users", o.APIURL)
	assert.Equal(t, 5, o.RowsPerPage)
	assert.Equal(t, 2*time.Second, o.Timeout)
}

func TestParseEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("USERBOARD_ROWS_PER_PAGE", "lots")
	_, err := ParseEnv()
	assert.Error(t, err)
}

func TestMergeFlagsOverEnv(t *testing.T) {
	flags := Overrides{Endpoint: "staging", RowsPerPage: 10}
	envs := Overrides{APIURL: "http://env/users", RowsPerPage: 5, Locale: "es", Timeout: time.Second}

	got := flags.Merge(envs)
	assert.Equal(t, "staging", got.Endpoint)
	assert.Empty(t, got.APIURL)
	assert.Equal(t, 10, got.RowsPerPage)
	assert.Equal(t, "es", got.Locale)
	assert.Equal(t, time.Second, got.Timeout)

	got = Overrides{}.Merge(envs)
	assert.Equal(t, "http://env/users", got.APIURL)
}

func TestResolveEndpointPriority(t *testing.T) {
	cfg := &Config{
		CurrentEndpoint: "a",
		Endpoints: map[string]EndpointConfig{
			"a": {URL: "http://a"},
			"b": {URL: "http://b"},
		},
	}

	ep, name, err := cfg.ResolveEndpoint(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, "http://a", ep.URL)

	ep, name, err = cfg.ResolveEndpoint(Overrides{Endpoint: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	assert.Equal(t, "http://b", ep.URL)

	ep, name, err = cfg.ResolveEndpoint(Overrides{APIURL: "http://direct", Endpoint: "b"})
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, "http://direct", ep.URL)

	_, _, err = cfg.ResolveEndpoint(Overrides{Endpoint: "missing"})
	assert.Error(t, err)

	_, _, err = (&Config{}).ResolveEndpoint(Overrides{})
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	s, err := (&Config{}).Resolve(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 7, s.RowsPerPage)
	assert.Equal(t, DefaultTimeout, s.Endpoint.Timeout)
	assert.Empty(t, s.Endpoint.URL)
}

func TestResolveLayers(t *testing.T) {
	cfg := &Config{
		CurrentEndpoint: "a",
		Endpoints:       map[string]EndpointConfig{"a": {URL: "http://a", Timeout: 4 * time.Second}},
		StateBackend:    "file",
		RowsPerPage:     5,
		Locale:          "en-US",
	}
	s, err := cfg.Resolve(Overrides{StateBackend: "memory", Locale: "es"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.StateBackend)
	assert.Equal(t, "es", s.Locale)
	assert.Equal(t, 5, s.RowsPerPage)
	assert.Equal(t, "a", s.EndpointName)
	assert.Equal(t, 4*time.Second, s.Endpoint.Timeout)

	s, err = cfg.Resolve(Overrides{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, time.Second, s.Endpoint.Timeout)
}

func TestResolveRejectsUnknownPageSize(t *testing.T) {
	_, err := (&Config{RowsPerPage: 8}).Resolve(Overrides{})
	assert.Error(t, err)
}
