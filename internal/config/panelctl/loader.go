package panelctl_config

import (
	"errors"
	"strings"

	"github.com/NordCoder/netpanel/internal/config/legacy"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"base-url":  "base_url",
	"token":     "token",
	"timeout":   "timeout",
	"limit":     "limit",
	"schedule":  "schedule",
	"log-level": "log_level",
}

// Load reads path (when set), NETPANEL_* variables and the flags that were
// set on fs, in increasing precedence. A missing base_url is taken from the
// v1 install.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetDefault("base_url", "")
	v.SetDefault("token", "")
	v.SetDefault("timeout", "10s")
	v.SetDefault("limit", 5)
	v.SetDefault("schedule", "@every 30s")
	v.SetDefault("keyring", "netpanel")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("netpanel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		lc, err := legacy.Load(legacy.InstallDir())
		if err == nil {
			cfg.BaseURL = lc.String("base_url")
		}
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is not set (flag --base-url, NETPANEL_BASE_URL or the v1 config)")
	}
	return &cfg, nil
}
