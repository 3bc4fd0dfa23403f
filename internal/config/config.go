package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrMissingField is returned by Validate when a required setting is empty.
var ErrMissingField = errors.New("missing required setting")

type Config struct {
	FromPath   string `yaml:"from_path"`
	ToPath     string `yaml:"to_path"`
	SquareSize int    `yaml:"square_size"`
	Grayscale  bool   `yaml:"bw"`
	Workers    int    `yaml:"workers"`
	Quality    int    `yaml:"quality"` // JPEG/WebP quality, 1-100
	Page       int    `yaml:"page"`    // PDF page index (0-based)
	DPI        int    `yaml:"dpi"`     // PDF rasterization DPI
	ShowStats  bool   `yaml:"stats"`
	Verbose    bool   `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Workers: 1,
		Quality: 95,
		DPI:     150,
	}
}

// Load reads a YAML config file on top of Default. Unknown keys are an error,
// an empty file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that both paths were provided. square_size is range
// checked against the image dimensions later.
func (c *Config) Validate() error {
	switch {
	case c.FromPath == "":
		return fmt.Errorf("%w: from_path", ErrMissingField)
	case c.ToPath == "":
		return fmt.Errorf("%w: to_path", ErrMissingField)
	}
	return nil
}
