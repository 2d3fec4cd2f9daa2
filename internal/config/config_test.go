package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VANBOOK_HTTP_ADDR", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("VANBOOK_KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.Maps.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Maps.CacheTTL)
	assert.Empty(t, cfg.Maps.APIKey)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "booking_events", cfg.Kafka.Topic)
	assert.False(t, cfg.Production())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VANBOOK_ENV", "production")
	t.Setenv("VANBOOK_HTTP_ADDR", ":9090")
	t.Setenv("VANBOOK_MAPS_TIMEOUT", "1500ms")
	t.Setenv("VANBOOK_MAPS_RATE_PER_SEC", "2.5")
	t.Setenv("VANBOOK_RATES_FILE", "/etc/vanbook/rates.yaml")
	t.Setenv("VANBOOK_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Maps.Timeout)
	assert.Equal(t, 2.5, cfg.Maps.RatePerSec)
	assert.Equal(t, "/etc/vanbook/rates.yaml", cfg.Tables.RatesFile)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}
