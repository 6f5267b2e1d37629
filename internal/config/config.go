package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
	// ConnectTimeout bounds the startup ping retries.
	ConnectTimeout time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"30s"`
}

// KafkaConfig enables publishing of committed ledger events. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envDefault:""`
	Topic        string        `env:"KAFKA_LEDGER_TOPIC" envDefault:"ledger_events"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`
}

// RedisConfig enables the leaderboard cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:""`
	Password string        `env:"REDIS_PASSWORD" envDefault:""`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
}
