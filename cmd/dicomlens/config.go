package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrsinham/dicomlens/internal/dicom"
	"github.com/mrsinham/dicomlens/internal/dicom/dicomdir"
	"github.com/mrsinham/dicomlens/internal/dicom/pixel"
)

// Window policy names accepted in the config file.
const (
	PolicySampledMinMax = "sampled-minmax"
	PolicyVOI           = "voi"
)

// Config is the YAML configuration file.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Decode      DecodeConfig      `yaml:"decode"`
	Window      WindowConfig      `yaml:"window"`
	TestPattern TestPatternConfig `yaml:"test_pattern"`
}

// DecodeConfig holds the decoder limits.
type DecodeConfig struct {
	MaxStringLength int  `yaml:"max_string_length"`
	RecordWindow    int  `yaml:"record_window"`
	DictionaryVR    bool `yaml:"dictionary_vr"`
}

// WindowConfig selects how pixel samples are mapped to gray levels.
type WindowConfig struct {
	Policy     string `yaml:"policy"`
	MaxSamples int    `yaml:"max_samples"`
}

// TestPatternConfig sets the placeholder raster size.
type TestPatternConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Decode: DecodeConfig{
			MaxStringLength: dicom.DefaultMaxStringLength,
			RecordWindow:    dicomdir.DefaultRecordWindow,
		},
		Window: WindowConfig{
			Policy:     PolicySampledMinMax,
			MaxSamples: pixel.DefaultMaxSamples,
		},
		TestPattern: TestPatternConfig{
			Width:  dicom.DefaultPatternSize,
			Height: dicom.DefaultPatternSize,
		},
	}
}

// LoadConfig reads path over the defaults. Fields missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a config file can get wrong.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Window.Policy {
	case PolicySampledMinMax, PolicyVOI:
	default:
		return fmt.Errorf("window.policy %q, valid options: %s, %s", c.Window.Policy, PolicySampledMinMax, PolicyVOI)
	}
	if c.Decode.MaxStringLength < 0 || c.Decode.RecordWindow < 0 || c.Window.MaxSamples < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if c.TestPattern.Width < 0 || c.TestPattern.Height < 0 {
		return fmt.Errorf("test_pattern size must not be negative")
	}
	return nil
}

// decoderOptions translates the config into decoder options.
func (c Config) decoderOptions(logger zerolog.Logger) []dicom.Option {
	opts := []dicom.Option{
		dicom.WithLogger(logger),
		dicom.WithMaxStringLength(c.Decode.MaxStringLength),
		dicom.WithWindowPolicy(pixel.SampledMinMax{MaxSamples: c.Window.MaxSamples}),
		dicom.WithTestPatternSize(c.TestPattern.Width, c.TestPattern.Height),
	}
	if c.Decode.DictionaryVR {
		opts = append(opts, dicom.WithDictionaryVR())
	}
	if c.Window.Policy == PolicyVOI {
		opts = append(opts, dicom.WithVOIWindowing())
	}
	return opts
}

// directoryOptions translates the config into DICOMDIR options.
func (c Config) directoryOptions(logger zerolog.Logger) []dicomdir.Option {
	return []dicomdir.Option{
		dicomdir.WithLogger(logger),
		dicomdir.WithRecordWindow(c.Decode.RecordWindow),
		dicomdir.WithDecoderOptions(dicom.WithMaxStringLength(c.Decode.MaxStringLength)),
	}
}
