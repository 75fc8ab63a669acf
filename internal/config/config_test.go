package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if c.Analysis.Timeout.Std() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", c.Analysis.Timeout.Std())
	}
	if c.Output.Filename != "merged_document.png" {
		t.Errorf("Unexpected default filename %q", c.Output.Filename)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "analysis:\n  backend: llamacpp\n  model: qwen2-vl\n  timeout: 90s\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if c.Analysis.Backend != BackendLlamaCpp || c.Analysis.Model != "qwen2-vl" {
		t.Errorf("Unexpected analysis section %+v", c.Analysis)
	}
	if c.Analysis.Timeout.Std() != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %v", c.Analysis.Timeout.Std())
	}
	if c.Analysis.MaxDim != 1024 || c.Editor.MaxScale != 2.5 {
		t.Error("Fields missing from the file should keep defaults")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Loaded config should be valid: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"c.json", "c.yml"} {
		path := filepath.Join(t.TempDir(), "sub", name)
		c := Default()
		c.Output.Format = "webp"
		c.Analysis.Timeout = Duration(5 * time.Second)

		if err := c.SaveToFile(path); err != nil {
			t.Fatalf("%s: SaveToFile failed: %v", name, err)
		}
		loaded, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("%s: LoadFromFile failed: %v", name, err)
		}
		if loaded.Output.Format != "webp" || loaded.Analysis.Timeout.Std() != 5*time.Second {
			t.Errorf("%s: values not preserved: %+v", name, loaded)
		}
	}
}

func TestSavedJSONUsesDurationString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	if err := Default().SaveToFile(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"timeout": "1m0s"`) {
		t.Errorf("Expected human-readable timeout in %s", data)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"scale range":   func(c *Config) { c.Editor.MinScale = 3 },
		"default scale": func(c *Config) { c.Editor.DefaultScale = 5 },
		"backend":       func(c *Config) { c.Analysis.Backend = "gpt" },
		"model":         func(c *Config) { c.Analysis.Model = "" },
		"max dim":       func(c *Config) { c.Analysis.MaxDim = 0 },
		"format":        func(c *Config) { c.Output.Format = "gif" },
		"quality":       func(c *Config) { c.Output.Quality = 0 },
		"log level":     func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestOCRBackendNeedsNoModel(t *testing.T) {
	c := Default()
	c.Analysis.Backend = BackendOCR
	c.Analysis.Model = ""
	if err := c.Validate(); err != nil {
		t.Errorf("OCR backend should not need a model: %v", err)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("SIGN_COMPOSER_TEST_KEY", "k-123")
	c := Default()
	c.Analysis.APIKeyEnv = "SIGN_COMPOSER_TEST_KEY"
	if got := c.APIKey(); got != "k-123" {
		t.Errorf("Expected key from environment, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("warn"); err != nil || l != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v %v", l, err)
	}
	if l, _ := ParseLevel(""); l != slog.LevelInfo {
		t.Errorf("Expected info for empty level, got %v", l)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
