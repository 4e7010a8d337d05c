// Package config loads runner settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Retries is the retry budget per decision: one retry after the first
// rejected attempt. It is part of the protocol contract, not a tunable.
const Retries = 1

// Config controls a benchmark run. Every field reads from the environment;
// command-line flags override on top.
type Config struct {
	Seed      uint64        `env:"MONOPOLY_SEED" envDefault:"1"`
	Players   string        `env:"MONOPOLY_PLAYERS" envDefault:"alice:greedy,bob:random"`
	MaxTurns  int           `env:"MONOPOLY_MAX_TURNS" envDefault:"500"`
	TradeCap  int           `env:"MONOPOLY_MAX_TRADE_EXCHANGES" envDefault:"3"`
	Timeout   time.Duration `env:"MONOPOLY_DECISION_TIMEOUT" envDefault:"30s"`
	DBPath    string        `env:"MONOPOLY_DB" envDefault:"monopoly.db"`
	WatchAddr string        `env:"MONOPOLY_WATCH_ADDR"` // empty disables the websocket hub
	RedisAddr string        `env:"MONOPOLY_REDIS_ADDR"` // empty disables redis publishing
	LogLevel  string        `env:"MONOPOLY_LOG_LEVEL" envDefault:"info"`
	Games     int           `env:"MONOPOLY_GAMES" envDefault:"1"`
	OutDir    string        `env:"MONOPOLY_OUT_DIR" envDefault:"experiments"`
}

// Load reads the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	if c.MaxTurns < 1 {
		return fmt.Errorf("max turns must be positive, got %d", c.MaxTurns)
	}
	if c.TradeCap < 0 {
		return fmt.Errorf("trade exchange cap must not be negative, got %d", c.TradeCap)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	_, err := ParseSeats(c.Players)
	return err
}

// Seat is one parsed player entry.
type Seat struct {
	Name string
	Kind string
	URL  string
}

// ParseSeats parses a comma-separated player list. Each entry is
// name:kind, with kind one of greedy, random, or http; http seats carry the
// endpoint as a third field, as in "carol:http:http://localhost:9000".
func ParseSeats(spec string) ([]Seat, error) {
	seen := map[string]bool{}
	var seats []Seat
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		seat := Seat{Name: fields[0], Kind: "greedy"}
		if seat.Name == "" {
			return nil, fmt.Errorf("player entry %q has no name", part)
		}
		if seen[seat.Name] {
			return nil, fmt.Errorf("duplicate player name %q", seat.Name)
		}
		seen[seat.Name] = true
		if len(fields) > 1 && fields[1] != "" {
			seat.Kind = fields[1]
		}
		switch seat.Kind {
		case "greedy", "random":
		case "http":
			if len(fields) < 3 || fields[2] == "" {
				return nil, fmt.Errorf("player %s: http seats need a url", seat.Name)
			}
			seat.URL = fields[2]
		default:
			return nil, fmt.Errorf("player %s: unknown kind %q", seat.Name, seat.Kind)
		}
		seats = append(seats, seat)
	}
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least two players, got %d", len(seats))
	}
	return seats, nil
}
