package config

import (
	// Go Internal Packages
	"time"

	// Local Packages
	errors "tx-pipeline/errors"
)

var DefaultConfig = []byte(`
application: "tx-pipeline"

logger:
  level: "debug"

is_prod_mode: false

server:
  port: 8080

mongo:
  uri: "mongodb://localhost:27017"
  database: "wallet"

redis:
  uri: "localhost:6379"
  password: ""

kafka:
  brokers:
    - "localhost:9092"
  topic: "transaction-events"
  consumer_name: "tx-audit"
  records_per_poll: 1000

pipeline:
  poll_interval: "500ms"
  worker_count: 8
  settle_delay: "15s"
  max_attempts: 3
  initial_backoff: "1s"
  lease_duration: "30s"
  retention: "168h"
`)

type Config struct {
	Application string   `koanf:"application"`
	Logger      Logger   `koanf:"logger"`
	IsProdMode  bool     `koanf:"is_prod_mode"`
	Server      Server   `koanf:"server"`
	Mongo       Mongo    `koanf:"mongo"`
	Redis       Redis    `koanf:"redis"`
	Kafka       Kafka    `koanf:"kafka"`
	Pipeline    Pipeline `koanf:"pipeline"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
}

type Kafka struct {
	Brokers        []string `koanf:"brokers"`
	Topic          string   `koanf:"topic"`
	ConsumerName   string   `koanf:"consumer_name"`
	RecordsPerPoll int      `koanf:"records_per_poll"`
}

type Pipeline struct {
	PollInterval   time.Duration `koanf:"poll_interval"`
	WorkerCount    int           `koanf:"worker_count"`
	SettleDelay    time.Duration `koanf:"settle_delay"`
	MaxAttempts    int           `koanf:"max_attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	LeaseDuration  time.Duration `koanf:"lease_duration"`
	Retention      time.Duration `koanf:"retention"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.Server.Port <= 0 {
		ve.Add("server.port", "must be positive")
	}
	if c.Mongo.URI == "" {
		ve.Add("mongo.uri", "cannot be empty")
	}
	if c.Mongo.Database == "" {
		ve.Add("mongo.database", "cannot be empty")
	}
	if c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty")
	}
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if c.Pipeline.PollInterval <= 0 {
		ve.Add("pipeline.poll_interval", "must be positive")
	}
	if c.Pipeline.WorkerCount <= 0 {
		ve.Add("pipeline.worker_count", "must be positive")
	}
	if c.Pipeline.MaxAttempts <= 0 {
		ve.Add("pipeline.max_attempts", "must be positive")
	}
	if c.Pipeline.LeaseDuration <= 0 {
		ve.Add("pipeline.lease_duration", "must be positive")
	}

	return ve.Err()
}
