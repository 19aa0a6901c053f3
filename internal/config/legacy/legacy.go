// Package legacy reads the settings of a v1 installation so the panel can
// pick up values such as base_url without duplicating them.
package legacy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	EnvInstallDir     = "V1_INSTALL_DIR"
	DefaultInstallDir = "/opt/librenms"
)

// InstallDir is $V1_INSTALL_DIR or DefaultInstallDir.
func InstallDir() string {
	if d := os.Getenv(EnvInstallDir); d != "" {
		return d
	}
	return DefaultInstallDir
}

// Files lists the files Load merges, lowest precedence first.
func Files(installDir string) []string {
	return []string{
		filepath.Join(installDir, "includes", "defaults.yaml"),
		filepath.Join(installDir, "config.yaml"),
	}
}

type Config struct {
	v      *viper.Viper
	loaded []string
}

// Load merges the defaults file and then the site config of installDir.
// Missing files are skipped, so an empty directory yields an empty Config.
func Load(installDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	c := &Config{v: v}

	for _, path := range Files(installDir) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merge %s: %w", path, err)
		}
		c.loaded = append(c.loaded, path)
	}
	return c, nil
}

// Loaded returns the files that were actually merged.
func (c *Config) Loaded() []string { return c.loaded }

func (c *Config) String(key string) string { return c.v.GetString(key) }

func (c *Config) IsSet(key string) bool { return c.v.IsSet(key) }

// Settings returns the merged tree.
func (c *Config) Settings() map[string]any { return c.v.AllSettings() }
