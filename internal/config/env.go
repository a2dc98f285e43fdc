package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Env holds the settings that are read from the environment only,
// secrets included.
type Env struct {
	OpenAIAPIKey      string        `env:"XIDACH_OPENAI_API_KEY"`
	OpenAIModel       string        `env:"XIDACH_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIURL         string        `env:"XIDACH_OPENAI_URL"`
	BrokerURL         string        `env:"XIDACH_BROKER_URL"`
	CommentaryTimeout time.Duration `env:"XIDACH_COMMENTARY_TIMEOUT" envDefault:"5s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

func LoadEnv() (Env, error) {
	var result Env
	err := ParseEnv(&result)
	return result, err
}
