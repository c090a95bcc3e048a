package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from environment
// variables so main stays lean.
type Config struct {
	Addr     string `env:"FAULTLINE_ADDR" envDefault:":8080"`
	LogLevel string `env:"FAULTLINE_LOG_LEVEL" envDefault:"info"`

	// RateLimit is requests per client per minute; 0 disables limiting.
	RateLimit int `env:"FAULTLINE_RATE_LIMIT_PER_MINUTE" envDefault:"600"`

	Cassandra Cassandra
	Kafka     Kafka
	Fanout    Fanout
}

type Cassandra struct {
	Hosts          []string      `env:"CASSANDRA_HOSTS" envDefault:"127.0.0.1" envSeparator:","`
	Port           int           `env:"CASSANDRA_PORT" envDefault:"9042"`
	Keyspace       string        `env:"CASSANDRA_KEYSPACE" envDefault:"issue_tracker"`
	ConnectTimeout time.Duration `env:"CASSANDRA_CONNECT_TIMEOUT" envDefault:"30s"`
	QueryTimeout   time.Duration `env:"CASSANDRA_QUERY_TIMEOUT" envDefault:"5s"`
	Replication    int           `env:"CASSANDRA_REPLICATION_FACTOR" envDefault:"1"`
}

// Kafka configures the optional change-event stream. An empty broker list
// disables publishing entirely.
type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_CHANGE_TOPIC" envDefault:"faultline.issue-changes"`
}

// Fanout bounds retries of secondary projection writes.
type Fanout struct {
	MaxRetries      uint64        `env:"FANOUT_MAX_RETRIES" envDefault:"3"`
	InitialInterval time.Duration `env:"FANOUT_RETRY_INITIAL_INTERVAL" envDefault:"50ms"`
	MaxInterval     time.Duration `env:"FANOUT_RETRY_MAX_INTERVAL" envDefault:"500ms"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
