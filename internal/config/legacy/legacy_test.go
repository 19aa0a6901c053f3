package legacy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_SiteOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "includes", "defaults.yaml"), "base_url: http://localhost/\ntitle: LibreNMS\nrrd:\n  step: 300\n")
	write(t, filepath.Join(dir, "config.yaml"), "base_url: https://nms.example.net/\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://nms.example.net/", cfg.String("base_url"))
	assert.Equal(t, "LibreNMS", cfg.String("title"))
	assert.Equal(t, "300", cfg.String("rrd.step"))
	assert.Len(t, cfg.Loaded(), 2)
}

func TestLoad_MissingFilesAreSkipped(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Settings())
	assert.Empty(t, cfg.Loaded())
	assert.False(t, cfg.IsSet("base_url"))

	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.yaml"), "title: Site\n")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Site", cfg.String("title"))
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.yaml"), "title: [unterminated\n")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestInstallDir(t *testing.T) {
	t.Setenv(EnvInstallDir, "")
	assert.Equal(t, DefaultInstallDir, InstallDir())

	t.Setenv(EnvInstallDir, "/srv/nms")
	assert.Equal(t, "/srv/nms", InstallDir())
}
