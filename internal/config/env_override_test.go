package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("FIREREDUCE_DRIVER sets both sides", func(t *testing.T) {
		t.Setenv("FIREREDUCE_DRIVER", DriverCGO)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DriverCGO, cfg.Source.Driver)
		assert.Equal(t, DriverCGO, cfg.Destination.Driver)
	})

	t.Run("empty env leaves config alone", func(t *testing.T) {
		t.Setenv("FIREREDUCE_DRIVER", "")
		t.Setenv("FIREREDUCE_LOG_LEVEL", "")

		cfg := &Config{Source: DatabaseConfig{Driver: "custom"}, Logging: LoggingConfig{Level: "warn"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "custom", cfg.Source.Driver)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("logging overrides", func(t *testing.T) {
		t.Setenv("FIREREDUCE_LOG_LEVEL", "debug")
		t.Setenv("FIREREDUCE_LOG_FORMAT", "console")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
	})

	t.Run("Load applies overrides and validates them", func(t *testing.T) {
		t.Setenv("FIREREDUCE_DRIVER", "bogus")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})
}
