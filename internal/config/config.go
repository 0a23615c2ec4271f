// Package config содержит логику чтения конфигурации магазина.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress   = "localhost:8080"
	defaultBonusPercent = 5
	defaultWelcomeBonus = 500
)

// Config содержит параметры конфигурации магазина.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`
	// BonusPercent задаёт процент от суммы доставленного заказа, начисляемый бонусами.
	BonusPercent int `env:"BONUS_PERCENT"`
	// WelcomeBonus в рублях, начисляется при регистрации.
	WelcomeBonus int64 `env:"WELCOME_BONUS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for signing session cookies")
	flag.StringVar(&cfg.AdminAPIKey, "k", "", "API key for admin endpoints")
	flag.IntVar(&cfg.BonusPercent, "b", defaultBonusPercent, "bonus percent for shipped orders")
	flag.Int64Var(&cfg.WelcomeBonus, "w", defaultWelcomeBonus, "welcome bonus in roubles")

	flag.Parse()

	// env.Parse трогает только заданные переменные, поэтому значения флагов остаются по умолчанию.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BonusPercent < 0 || c.BonusPercent > 100 {
		return fmt.Errorf("bonus percent must be in [0, 100], got %d", c.BonusPercent)
	}
	if c.WelcomeBonus < 0 {
		return errors.New("welcome bonus must not be negative")
	}
	return nil
}
