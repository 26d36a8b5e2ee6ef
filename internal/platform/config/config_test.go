package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		StorageDriver:     StoragePostgres,
		DatabaseURL:       "postgres://localhost/ledger",
		JWTSecret:         "s3cr3t",
		KafkaTopic:        "ledger.events",
		OutboxBatchSize:   50,
		OutboxMaxAttempts: 10,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid postgres", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseURL = "" }, "PGSQL_URL is required"},
		{"memory in development", func(c *Config) { c.StorageDriver = StorageMemory; c.DatabaseURL = "" }, ""},
		{"memory in production", func(c *Config) { c.StorageDriver = StorageMemory; c.IsProduction = true }, "not allowed in production"},
		{"unknown driver", func(c *Config) { c.StorageDriver = "sqlite" }, `unknown STORAGE_DRIVER "sqlite"`},
		{"default secret in production", func(c *Config) {
			c.IsProduction = true
			c.JWTSecret = "a-very-secret-key-should-be-longer-and-random"
		}, "JWT_SECRET must be set"},
		{"brokers without topic", func(c *Config) { c.KafkaBrokers = []string{"k:9092"}; c.KafkaTopic = "" }, "KAFKA_TOPIC is required"},
		{"zero batch size", func(c *Config) { c.OutboxBatchSize = 0 }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092, kafka2:9092,")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")
	t.Setenv("BATCH_IMPORT_WORKERS", "3")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, 3, cfg.BatchImportWorkers)
	assert.Equal(t, "ledger.events", cfg.KafkaTopic)
}
