package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	DatabaseURL     string `env:"DATABASE_URL" envDefault:""`
	PostgresHost    string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort    string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPass    string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB      string `env:"POSTGRES_DB" envDefault:"airport"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"5m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"24h"`

	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	KafkaBrokers  string `env:"KAFKA_BROKERS" envDefault:""`
	KafkaTopic    string `env:"KAFKA_TOPIC" envDefault:"airport.mutations"`
	KafkaGroupID  string `env:"KAFKA_GROUP_ID" envDefault:""`
	KafkaDLQTopic string `env:"KAFKA_DLQ_TOPIC" envDefault:"airport.mutations.dlq"`
	InstanceID    string `env:"INSTANCE_ID" envDefault:""`

	MediaRoot string `env:"MEDIA_ROOT" envDefault:"media"`
	MediaURL  string `env:"MEDIA_URL" envDefault:"/media/"`

	TicketLeadTime time.Duration `env:"TICKET_LEAD_TIME" envDefault:"10m"`
}

// LoadConfig reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("config parse: unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if !strings.HasSuffix(c.MediaURL, "/") {
		c.MediaURL += "/"
	}
	return c, nil
}

func (c Config) KafkaBrokersSlice() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokersSlice()) > 0
}

func (c Config) PgDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPass,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}
