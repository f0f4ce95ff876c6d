// SPDX-License-Identifier: EPL-2.0

// Package config loads studio settings from defaults, an optional YAML file
// and STUDIO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all runtime configuration.
type Config struct {
	// Audio graph
	SampleRate   int           `yaml:"sample_rate"`
	OutputBuffer time.Duration `yaml:"output_buffer"`
	FFTSize      int           `yaml:"fft_size"`
	Smoothing    float64       `yaml:"smoothing"`
	MinDecibels  float64       `yaml:"min_decibels"`
	MaxDecibels  float64       `yaml:"max_decibels"`

	// Visualizer
	FrameRate    int    `yaml:"frame_rate"`
	CanvasWidth  int    `yaml:"canvas_width"`
	CanvasHeight int    `yaml:"canvas_height"`
	Renderer     string `yaml:"renderer"`

	DefaultVolume float64 `yaml:"default_volume"`

	// Server
	BackendURL     string `yaml:"backend_url"`
	ListenAddr     string `yaml:"listen_addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	// MediaRoot is the only directory /api/media reads from. Empty turns
	// the endpoint off.
	MediaRoot         string `yaml:"media_root"`
	MediaCacheEntries int    `yaml:"media_cache_entries"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() Config {
	return Config{
		SampleRate:        44100,
		OutputBuffer:      100 * time.Millisecond,
		FFTSize:           2048,
		Smoothing:         0.8,
		MinDecibels:       -100,
		MaxDecibels:       -30,
		FrameRate:         60,
		CanvasWidth:       800,
		CanvasHeight:      256,
		Renderer:          "bars",
		DefaultVolume:     0.7,
		BackendURL:        "http://localhost:3001",
		ListenAddr:        ":8080",
		MaxUploadBytes:    50 << 20,
		MediaCacheEntries: 8,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load builds the config. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SampleRate = envInt("STUDIO_SAMPLE_RATE", c.SampleRate)
	c.OutputBuffer = envDuration("STUDIO_OUTPUT_BUFFER", c.OutputBuffer)
	c.FFTSize = envInt("STUDIO_FFT_SIZE", c.FFTSize)
	c.Smoothing = envFloat("STUDIO_SMOOTHING", c.Smoothing)
	c.MinDecibels = envFloat("STUDIO_MIN_DECIBELS", c.MinDecibels)
	c.MaxDecibels = envFloat("STUDIO_MAX_DECIBELS", c.MaxDecibels)
	c.FrameRate = envInt("STUDIO_FRAME_RATE", c.FrameRate)
	c.CanvasWidth = envInt("STUDIO_CANVAS_WIDTH", c.CanvasWidth)
	c.CanvasHeight = envInt("STUDIO_CANVAS_HEIGHT", c.CanvasHeight)
	c.Renderer = envStr("STUDIO_RENDERER", c.Renderer)
	c.DefaultVolume = envFloat("STUDIO_DEFAULT_VOLUME", c.DefaultVolume)
	c.BackendURL = envStr("STUDIO_BACKEND_URL", c.BackendURL)
	c.ListenAddr = envStr("STUDIO_LISTEN_ADDR", c.ListenAddr)
	c.MaxUploadBytes = int64(envInt("STUDIO_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.MediaRoot = envStr("STUDIO_MEDIA_ROOT", c.MediaRoot)
	c.MediaCacheEntries = envInt("STUDIO_MEDIA_CACHE_ENTRIES", c.MediaCacheEntries)
	c.LogLevel = envStr("STUDIO_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr("STUDIO_LOG_FORMAT", c.LogFormat)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate must be positive", ErrInvalidConfig)
	case c.OutputBuffer <= 0:
		return fmt.Errorf("%w: output_buffer must be positive", ErrInvalidConfig)
	case c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0:
		return fmt.Errorf("%w: fft_size %d is not a power of two in [32, 32768]", ErrInvalidConfig, c.FFTSize)
	case c.Smoothing < 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing must be in [0, 1]", ErrInvalidConfig)
	case c.MinDecibels >= c.MaxDecibels:
		return fmt.Errorf("%w: min_decibels must be below max_decibels", ErrInvalidConfig)
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate must be positive", ErrInvalidConfig)
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("%w: canvas size must be positive", ErrInvalidConfig)
	case c.DefaultVolume < 0 || c.DefaultVolume > 1:
		return fmt.Errorf("%w: default_volume must be in [0, 1]", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.MediaCacheEntries <= 0:
		return fmt.Errorf("%w: media_cache_entries must be positive", ErrInvalidConfig)
	case c.ListenAddr == "":
		return fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
