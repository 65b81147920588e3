package config

import (
	"fmt"
	"github.com/caarlos0/env/v8"
)

// Dragonfly backs the shared rate limiter. It is optional; without a host the
// limiter stays in process memory.
type Dragonfly struct {
	Host     string `env:"DRAGONFLY_HOST"`
	Port     int    `env:"DRAGONFLY_PORT" envDefault:"6379"`
	DB       int    `env:"DRAGONFLY_DB" envDefault:"0"`
	Password string `env:"DRAGONFLY_PASSWORD"`
}

func NewDragonflyConfig() *Dragonfly {
	conf := &Dragonfly{}

	if err := env.Parse(conf); err != nil {
		panic(err)
	}

	return conf
}

func (d *Dragonfly) Enabled() bool {
	return d.Host != ""
}

func (d *Dragonfly) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
