// Package config loads application configuration from environment variables
// using envconfig. All settings have sensible defaults so a bare environment
// yields a working local setup.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains every configuration parameter for the application.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TelemetryEnabled toggles OTLP telemetry export. Off by default since
	// the client is usually run without a collector nearby.
	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// KeystorePath is the device-local file holding the encrypted mnemonic.
	KeystorePath string `envconfig:"KEYSTORE_PATH" default:"wallet.keystore"`

	// Passcode protects the keystore and gates mnemonic reveals. An empty
	// passcode leaves authentication unavailable, so the secret cannot be
	// stored or revealed until one is provisioned.
	Passcode string `envconfig:"PASSCODE" default:""`

	IndexerBaseURL string        `envconfig:"INDEXER_BASE_URL" default:"https://ethereum-api.xyz"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
}

// Load processes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("walletcore", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}

	return cfg, nil
}
