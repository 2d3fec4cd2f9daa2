// README: Config loader with env defaults for HTTP, DB, Redis, maps, payments, events and rate tables.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type MapsConfig struct {
	APIKey     string
	Timeout    time.Duration
	RatePerSec float64
	CacheTTL   time.Duration
}

type Config struct {
	Env  string
	HTTP struct {
		Addr string
	}
	DB struct {
		// Empty DSN keeps quotes and bookings in memory.
		DSN string
	}
	Redis struct {
		// Empty Addr disables the routing cache.
		Addr string
	}
	Maps    MapsConfig
	Payment struct {
		StripeKey string
	}
	Kafka struct {
		// Empty Brokers disables booking event publishing.
		Brokers []string
		Topic   string
	}
	Tables struct {
		DistanceFile string
		RatesFile    string
	}
}

// Load reads VANBOOK_* variables, optionally from a .env file in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("VANBOOK_ENV", "development")
	v.SetDefault("VANBOOK_HTTP_ADDR", ":8080")
	v.SetDefault("VANBOOK_DB_DSN", "")
	v.SetDefault("VANBOOK_REDIS_ADDR", "")
	v.SetDefault("GOOGLE_MAPS_API_KEY", "")
	v.SetDefault("VANBOOK_MAPS_TIMEOUT", 3*time.Second)
	v.SetDefault("VANBOOK_MAPS_RATE_PER_SEC", 10.0)
	v.SetDefault("VANBOOK_MAPS_CACHE_TTL", 24*time.Hour)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("VANBOOK_KAFKA_BROKERS", "")
	v.SetDefault("VANBOOK_KAFKA_TOPIC", "booking_events")
	v.SetDefault("VANBOOK_TABLES_FILE", "")
	v.SetDefault("VANBOOK_RATES_FILE", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	cfg.Env = v.GetString("VANBOOK_ENV")
	cfg.HTTP.Addr = v.GetString("VANBOOK_HTTP_ADDR")
	cfg.DB.DSN = v.GetString("VANBOOK_DB_DSN")
	cfg.Redis.Addr = v.GetString("VANBOOK_REDIS_ADDR")
	cfg.Maps = MapsConfig{
		APIKey:     v.GetString("GOOGLE_MAPS_API_KEY"),
		Timeout:    v.GetDuration("VANBOOK_MAPS_TIMEOUT"),
		RatePerSec: v.GetFloat64("VANBOOK_MAPS_RATE_PER_SEC"),
		CacheTTL:   v.GetDuration("VANBOOK_MAPS_CACHE_TTL"),
	}
	cfg.Payment.StripeKey = v.GetString("STRIPE_SECRET_KEY")
	cfg.Kafka.Brokers = splitList(v.GetString("VANBOOK_KAFKA_BROKERS"))
	cfg.Kafka.Topic = v.GetString("VANBOOK_KAFKA_TOPIC")
	cfg.Tables.DistanceFile = v.GetString("VANBOOK_TABLES_FILE")
	cfg.Tables.RatesFile = v.GetString("VANBOOK_RATES_FILE")
	return cfg, nil
}

// splitList parses "host1:9092, host2:9092".
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Production() bool {
	return c.Env == "production"
}
