package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSave_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	cfg.Menu = "fzf"
	cfg.Path = "/tmp/bookmarks"

	require.NoError(t, Save(path, cfg))

	require.Equal(t, cfg, loadConfigFromFile(t, path))
}

func TestSave_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg := Defaults()
	cfg.Rows = 42
	cfg.Browser = "qutebrowser"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Menu program used to pick bookmarks.")
	require.Contains(t, string(data), "rows: 42")

	got := loadConfigFromFile(t, path)
	require.Equal(t, 42, got.Rows)
	require.Equal(t, "qutebrowser", got.Browser)
	require.Equal(t, "bemenu", got.Menu)
}

func TestSave_KeepsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extra: keep-me\nmenu: dmenu\n"), 0o600))

	require.NoError(t, Save(path, Defaults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "extra: keep-me")
	require.Contains(t, string(data), "menu: bemenu")
}

func TestSave_RejectsNonMappingRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.Error(t, Save(path, Defaults()))
}

func TestSave_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("menu: [unclosed\n"), 0o600))

	err := Save(path, Defaults())
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}

func loadConfigFromFile(t *testing.T, path string) Config {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return loadConfigFromYAML(t, string(data))
}
