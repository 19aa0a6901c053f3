package panelctl_config

import (
	"time"

	"github.com/NordCoder/netpanel/internal/obs"
)

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Limit is how many notifications the badge lists.
	Limit int `mapstructure:"limit"`
	// Schedule is the cron spec used by watch.
	Schedule string `mapstructure:"schedule"`
	Keyring  string `mapstructure:"keyring"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:      c.LogLevel,
		Pretty:     true,
		App:        "panelctl",
		File:       c.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 2,
	}
}
