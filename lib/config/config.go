// Package config loads the settings of the xnapc tool.
package config

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Config holds the codec, logging and decoder settings
type Config struct {
	Codec  CodecCfg  `toml:"codec"`
	Log    LogCfg    `toml:"log"`
	Decode DecodeCfg `toml:"decode"`
}

// CodecCfg selects the PER variant
type CodecCfg struct {
	Aligned bool `toml:"aligned"`
}

// LogCfg configures logrus
type LogCfg struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DecodeCfg bounds and tunes decoding
type DecodeCfg struct {
	MaxEntries    uint64 `toml:"max_entries"`
	NotifyIsError bool   `toml:"notify_is_error"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Codec: CodecCfg{Aligned: true},
		Log:   LogCfg{Level: "info", Format: "text"},
		Decode: DecodeCfg{
			MaxEntries: 256,
		},
	}
}

// ParseConfig reads a TOML file over the defaults.
func ParseConfig(tomlCfgFile string) (*Config, error) {
	data, err := os.ReadFile(tomlCfgFile)
	if err != nil {
		return nil, err
	}
	return ParseConfigBytes(data)
}

// ParseConfigBytes parses TOML data. Keys absent from data keep their
// default value.
func ParseConfigBytes(data []byte) (*Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}
	file := Config{}
	if err := tree.Unmarshal(&file); err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}

	cfg := Default()
	if tree.Has("codec.aligned") {
		cfg.Codec.Aligned = file.Codec.Aligned
	}
	if tree.Has("log.level") {
		cfg.Log.Level = file.Log.Level
	}
	if tree.Has("log.format") {
		cfg.Log.Format = file.Log.Format
	}
	if tree.Has("decode.max_entries") {
		cfg.Decode.MaxEntries = file.Decode.MaxEntries
	}
	if tree.Has("decode.notify_is_error") {
		cfg.Decode.NotifyIsError = file.Decode.NotifyIsError
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log level")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log format %q is neither text nor json", c.Log.Format)
	}
	return nil
}

// ConfigureLogger applies the log settings to logger.
func (c *Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if strings.ToLower(c.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}

// DecoderOptions returns the decoder options matching the settings.
func (c *Config) DecoderOptions(logger *logrus.Entry) []per.Option {
	options := []per.Option{per.WithLogger(logger), per.WithLimit(c.Decode.MaxEntries)}
	if !c.Codec.Aligned {
		options = append(options, per.Unaligned())
	}
	return options
}
