package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`
	StaticDir  string `env:"STATIC_DIR" envDefault:"public"`

	Duel DuelConfig
	WS   WSConfig
}

type DuelConfig struct {
	// Countdown - задержка между готовностью обоих игроков и стартом дуэли
	Countdown time.Duration `env:"DUEL_COUNTDOWN" envDefault:"3s"`
}

type WSConfig struct {
	SendBuffer   int           `env:"WS_SEND_BUFFER" envDefault:"64"`
	PingInterval time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	ReadTimeout  time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
}

func New() (*Config, error) {
	// .env опционален
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if c.Duel.Countdown <= 0 {
		return nil, fmt.Errorf("duel countdown must be positive, got %s", c.Duel.Countdown)
	}

	if c.WS.SendBuffer <= 0 {
		return nil, fmt.Errorf("ws send buffer must be positive, got %d", c.WS.SendBuffer)
	}

	return &c, nil
}
