package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SIMULATE_BADGER_PATH keeps the run on disk for cmd/inspect; empty runs in memory.
	BadgerPath string `envconfig:"SIMULATE_BADGER_PATH"`
	// SIMULATE_COLOURS enables colorized step output.
	Colours         bool          `envconfig:"SIMULATE_COLOURS" default:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"WARN"`
	WaitTimeout     time.Duration `envconfig:"SIMULATE_WAIT_TIMEOUT" default:"2s"`
	CharReplacement string        `envconfig:"MODERATION_CHARACTER_REPLACEMENT" default:"*"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) MaskRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf("MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q", c.CharReplacement)
	}
	return r[0], nil
}
