package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig   `json:"editor" yaml:"editor"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	LogLevel string         `json:"log_level" yaml:"log_level"`
}

// EditorConfig holds overlay placement defaults
type EditorConfig struct {
	DefaultX     float64 `json:"default_x" yaml:"default_x"`
	DefaultY     float64 `json:"default_y" yaml:"default_y"`
	DefaultScale float64 `json:"default_scale" yaml:"default_scale"`
	MinScale     float64 `json:"min_scale" yaml:"min_scale"`
	MaxScale     float64 `json:"max_scale" yaml:"max_scale"`
}

// RenderConfig holds marker and highlight geometry
type RenderConfig struct {
	MarkerRadius    float64 `json:"marker_radius" yaml:"marker_radius"`
	MarkerStroke    float64 `json:"marker_stroke" yaml:"marker_stroke"`
	DashLength      float64 `json:"dash_length" yaml:"dash_length"`
	HighlightWidth  float64 `json:"highlight_width" yaml:"highlight_width"`
	HighlightMargin float64 `json:"highlight_margin" yaml:"highlight_margin"`
}

// AnalysisConfig holds the document analysis backend settings
type AnalysisConfig struct {
	Backend             string   `json:"backend" yaml:"backend"`
	URL                 string   `json:"url" yaml:"url"`
	Model               string   `json:"model" yaml:"model"`
	APIKeyEnv           string   `json:"api_key_env" yaml:"api_key_env"`
	MaxDim              int      `json:"max_dim" yaml:"max_dim"`
	Timeout             Duration `json:"timeout" yaml:"timeout"`
	Language            string   `json:"language" yaml:"language"`
	OCRLanguages        string   `json:"ocr_languages" yaml:"ocr_languages"`
	FallbackDescription string   `json:"fallback_description" yaml:"fallback_description"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"`
	Dir      string `json:"dir" yaml:"dir"`
	Filename string `json:"filename" yaml:"filename"`
	Quality  int    `json:"quality" yaml:"quality"`
	Lossless bool   `json:"lossless" yaml:"lossless"`
}

// Analysis backends.
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
	BackendOCR      = "ocr"
)

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			DefaultX:     50,
			DefaultY:     50,
			DefaultScale: 1,
			MinScale:     0.1,
			MaxScale:     2.5,
		},
		Render: RenderConfig{
			MarkerRadius:    12,
			MarkerStroke:    2,
			DashLength:      5,
			HighlightWidth:  4,
			HighlightMargin: 2,
		},
		Analysis: AnalysisConfig{
			Backend:             BackendOllama,
			URL:                 "http://localhost:11434",
			Model:               "minicpm-v",
			APIKeyEnv:           "API_KEY",
			MaxDim:              1024,
			Timeout:             Duration(60 * time.Second),
			Language:            "English",
			OCRLanguages:        "eng",
			FallbackDescription: "Unable to analyze document.",
		},
		Output: OutputConfig{
			Format:   "png",
			Dir:      ".",
			Filename: "merged_document.png",
			Quality:  90,
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a JSON or YAML file, chosen by
// extension. Fields missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration as JSON or YAML, chosen by extension.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	e := c.Editor
	if e.MinScale <= 0 || e.MaxScale < e.MinScale {
		return fmt.Errorf("editor: scale range [%g,%g] is invalid", e.MinScale, e.MaxScale)
	}
	if e.DefaultScale < e.MinScale || e.DefaultScale > e.MaxScale {
		return fmt.Errorf("editor.default_scale must be within [%g,%g]", e.MinScale, e.MaxScale)
	}

	r := c.Render
	if r.MarkerRadius <= 0 || r.MarkerStroke < 0 || r.DashLength < 0 {
		return fmt.Errorf("render: marker radius must be positive and stroke/dash non-negative")
	}
	if r.HighlightWidth < 0 || r.HighlightMargin < 0 {
		return fmt.Errorf("render: highlight width and margin must be non-negative")
	}

	a := c.Analysis
	switch a.Backend {
	case BackendOllama, BackendLlamaCpp:
		if a.Model == "" {
			return fmt.Errorf("analysis.model is required for backend %s", a.Backend)
		}
	case BackendOCR:
	default:
		return fmt.Errorf("analysis.backend must be one of %s, %s, %s", BackendOllama, BackendLlamaCpp, BackendOCR)
	}
	if a.MaxDim < 1 {
		return fmt.Errorf("analysis.max_dim must be positive")
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be positive")
	}

	switch c.Output.Format {
	case "png", "webp", "jpg", "jpeg":
	default:
		return fmt.Errorf("output.format must be png, webp or jpg")
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// APIKey returns the analysis credential from the configured environment
// variable.
func (c *Config) APIKey() string {
	if c.Analysis.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Analysis.APIKeyEnv)
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("invalid log_level %q", level)
	}
	return l, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "sign-composer", "config.yaml")
}

// Duration is a time.Duration written as a string such as "60s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}
