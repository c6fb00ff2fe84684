package session

import "github.com/danmuck/duochat/internal/protocol/frame"

// Config defines per-session wire behavior.
type Config struct {
	Codec frame.Codec
}

func DefaultConfig() Config {
	return Config{
		Codec: frame.DefaultCodec(),
	}
}

func (c Config) WithDefaults() Config {
	c.Codec = c.Codec.WithDefaults()
	return c
}
