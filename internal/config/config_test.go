package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production config", func(c *Config) {}, false},
		{"Default JWT secret", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"Short JWT secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default session secret", func(c *Config) { c.SessionSecret = "your-session-secret-change-in-production" }, true},
		{"Default DB password", func(c *Config) { c.DBPassword = "password" }, true},
		{"SSL disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Empty SSL mode", func(c *Config) { c.DBSSLMode = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:           "production",
				Port:          "3000",
				JWTSecret:     "secure-jwt-secret-at-least-32-chars-long",
				SessionSecret: "secure-session-secret-also-32-chars-min",
				DBPassword:    "secure-password",
				DBSSLMode:     "require",
				RedisURL:      "redis://localhost:6379",
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateDevelopmentIsLenient(t *testing.T) {
	c := &Config{
		Env:           "development",
		Port:          "3000",
		JWTSecret:     "short",
		SessionSecret: "also-short",
		DBSSLMode:     "disable",
	}
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_SSLModeNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, "blogchef", c.DBName)
	assert.Equal(t, "stdout", c.TraceExporter)
}
