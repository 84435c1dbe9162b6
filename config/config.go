package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wbrown/asciipng/oops"
)

type Config struct {
	Addr            string
	DefaultWidth    int
	MaxWidth        int
	MaxUploadBytes  int64
	MaxPixels       int
	ShutdownTimeout time.Duration
	Log             LogConfig
}

type LogConfig struct {
	Level string
	File  string
	JSON  bool
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Addr:            ":3000",
		DefaultWidth:    150,
		MaxWidth:        500,
		MaxUploadBytes:  32 << 20,
		MaxPixels:       1 << 26,
		ShutdownTimeout: 10 * time.Second,
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c Config) Validate() error {
	if c.DefaultWidth <= 0 {
		return oops.New(nil, "default width must be positive, got %d", c.DefaultWidth)
	}
	if c.MaxWidth < c.DefaultWidth {
		return oops.New(nil, "max width %d is below the default width %d", c.MaxWidth, c.DefaultWidth)
	}
	if c.MaxUploadBytes <= 0 {
		return oops.New(nil, "max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxPixels <= 0 {
		return oops.New(nil, "max pixels must be positive, got %d", c.MaxPixels)
	}
	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	return nil
}

// ZerologLevel parses Level; an empty level means info.
func (lc LogConfig) ZerologLevel() (zerolog.Level, error) {
	if lc.Level == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return zerolog.NoLevel, oops.New(err, "invalid log level %q", lc.Level)
	}
	return level, nil
}
