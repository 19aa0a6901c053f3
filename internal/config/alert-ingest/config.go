package alert_ingest_config

import (
	"github.com/NordCoder/netpanel/internal/obs"
	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	pginfra "github.com/NordCoder/netpanel/internal/repository/postgres"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type KafkaIn struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	Partitions    int      `mapstructure:"partitions"`
	FromBeginning bool     `mapstructure:"from_beginning"`
}

func (k KafkaIn) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers:       k.Brokers,
		GroupID:       k.GroupID,
		Topic:         k.Topic,
		Partitions:    k.Partitions,
		FromBeginning: k.FromBeginning,
	}
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
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
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

func (lc *Log) AsLoggerConfig(app App) obs.LogConfig {
	return obs.LogConfig{
		Level:      lc.Level,
		Pretty:     lc.Pretty,
		App:        app.Name,
		Env:        app.Env,
		Ver:        app.Version,
		File:       lc.File,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 14,
	}
}

type Config struct {
	App    App            `mapstructure:"app"`
	DB     pginfra.Config `mapstructure:"db"`
	In     KafkaIn        `mapstructure:"kafka_in"`
	Server Server         `mapstructure:"server"`
	OTEL   OTEL           `mapstructure:"otel"`
	Log    Log            `mapstructure:"log"`
}
