package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_TEST_TIMEOUT bounds every wait on an expected event
	EventTimeout time.Duration `envconfig:"RELAY_TEST_TIMEOUT" default:"2s"`
	BufferSize   int           `envconfig:"RELAY_TEST_BUFFER_SIZE" default:"64"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
