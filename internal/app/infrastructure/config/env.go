package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"
)

// Env holds the variables that override config.json.
type Env struct {
	Name     string `env:"NAME"`
	Token    string `env:"TOKEN"`
	ClientID string `env:"CLIENT_ID"`
	Channel  string `env:"CHANNEL"`
	LogLevel string `env:"LOG_LEVEL"`
}

// LoadEnv reads the given .env files when they exist and then the process environment.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var e Env
	if err := env.Set(&e); err != nil {
		return Env{}, fmt.Errorf("read environment: %w", err)
	}
	return e, nil
}

func (e Env) apply(cfg *Config) {
	if e.Name != "" {
		cfg.App.Username = e.Name
	}
	if e.Token != "" {
		cfg.App.OAuth = e.Token
	}
	if e.ClientID != "" {
		cfg.App.ClientID = e.ClientID
	}
	if e.Channel != "" {
		cfg.App.Channel = e.Channel
	}
	if e.LogLevel != "" {
		cfg.App.LogLevel = e.LogLevel
	}
}
