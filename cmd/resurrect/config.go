package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	URI         string `toml:"uri"`
	Tube        string `toml:"tube"`
	ConnTimeout string `toml:"conn_timeout"`
	DialTimeout string `toml:"dial_timeout"`
	Debug       bool   `toml:"debug"`
}

type config struct {
	URI         string
	Tube        string
	ConnTimeout time.Duration
	DialTimeout time.Duration
	Debug       bool
}

func defaultConfig() config {
	return config{
		URI:         "beanstalk://localhost:11300",
		ConnTimeout: 5 * time.Second,
		DialTimeout: time.Second,
	}
}

// loadConfig overlays the values defined in the TOML file at path onto cfg.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("uri") {
		cfg.URI = strings.TrimSpace(raw.URI)
	}
	if meta.IsDefined("tube") {
		cfg.Tube = strings.TrimSpace(raw.Tube)
	}
	if meta.IsDefined("conn_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnTimeout))
		if err != nil {
			return config{}, fmt.Errorf("parse conn_timeout: %w", err)
		}
		cfg.ConnTimeout = d
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return config{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}

	return cfg, nil
}
