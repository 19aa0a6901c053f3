package panel_api_config

import (
	"time"

	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/outbox"
	pg "github.com/NordCoder/netpanel/internal/repository/postgres"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
	// Seed inserts a welcome notification when the memory store starts empty.
	Seed bool `mapstructure:"seed"`
}

type Kafka struct {
	Enable            bool     `mapstructure:"enable"`
	Brokers           []string `mapstructure:"brokers"`
	Topic             string   `mapstructure:"topic"`
	Partitions        int      `mapstructure:"partitions"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level      string `mapstructure:"level"`
	Pretty     bool   `mapstructure:"pretty"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (lc *Log) AsLoggerConfig(app App) obs.LogConfig {
	return obs.LogConfig{
		Level:      lc.Level,
		Pretty:     lc.Pretty,
		App:        app.Name,
		Env:        app.Env,
		Ver:        app.Version,
		File:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Compress:   lc.Compress,
	}
}

type Auth struct {
	Enable    bool          `mapstructure:"enable"`
	CSRF      bool          `mapstructure:"csrf"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	DevTTL    time.Duration `mapstructure:"dev_token_ttl"`
}

// Panel holds what the front end shows; empty values fall back to the v1 install.
type Panel struct {
	BaseURL    string `mapstructure:"base_url"`
	Title      string `mapstructure:"title"`
	InstallDir string `mapstructure:"install_dir"`
}

type Config struct {
	App     App                 `mapstructure:"app"`
	Server  Server              `mapstructure:"server"`
	Storage Storage             `mapstructure:"storage"`
	DB      pg.Config           `mapstructure:"db"`
	Kafka   Kafka               `mapstructure:"kafka"`
	Outbox  outbox.RunnerConfig `mapstructure:"outbox"`
	OTEL    OTEL                `mapstructure:"otel"`
	Log     Log                 `mapstructure:"log"`
	Auth    Auth                `mapstructure:"auth"`
	Panel   Panel               `mapstructure:"panel"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
