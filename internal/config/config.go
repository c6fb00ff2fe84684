package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/duochat/internal/protocol/frame"
)

// Config is the merged runtime configuration for one duochat process.
// CLI arguments are applied on top of a loaded file.
type Config struct {
	Name        string
	Host        string
	Port        int
	BindHost    string
	ByteOrder   string
	LogLevel    string
	NoColor     bool
	MetricsAddr string
}

type fileConfig struct {
	Name        string `toml:"name"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	BindHost    string `toml:"bind_host"`
	ByteOrder   string `toml:"byte_order"`
	LogLevel    string `toml:"log_level"`
	NoColor     bool   `toml:"no_color"`
	MetricsAddr string `toml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		Host:      "localhost",
		BindHost:  "",
		ByteOrder: "little",
		LogLevel:  "warn",
	}
}

// Load overlays the keys defined in the toml file at path onto DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load duochat config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load duochat config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = raw.Name
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		if err := ValidatePortNumber(raw.Port); err != nil {
			return Config{}, fmt.Errorf("parse port: %w", err)
		}
		cfg.Port = raw.Port
	}
	if meta.IsDefined("bind_host") {
		cfg.BindHost = strings.TrimSpace(raw.BindHost)
	}
	if meta.IsDefined("byte_order") {
		if _, err := frame.ParseByteOrder(raw.ByteOrder); err != nil {
			return Config{}, fmt.Errorf("parse byte_order: %w", err)
		}
		cfg.ByteOrder = strings.TrimSpace(raw.ByteOrder)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("no_color") {
		cfg.NoColor = raw.NoColor
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	return cfg, nil
}

// ValidateResponder checks what the listening role needs before any transport activity.
func ValidateResponder(cfg Config) error {
	if err := ValidatePortNumber(cfg.Port); err != nil {
		return err
	}
	return ValidateName(cfg.Name)
}

// ValidateInitiator checks what the connecting role needs before any transport activity.
func ValidateInitiator(cfg Config) error {
	if err := ValidateHost(cfg.Host); err != nil {
		return err
	}
	if err := ValidatePortNumber(cfg.Port); err != nil {
		return err
	}
	return ValidateName(cfg.Name)
}
