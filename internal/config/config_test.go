package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	policy := cfg.CropPolicy()
	assert.Equal(t, 80, policy.Quality)
	assert.Equal(t, "jpg", policy.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quality too low", func(c *Config) { c.Crop.Quality = 0 }},
		{"quality too high", func(c *Config) { c.Crop.Quality = 101 }},
		{"unknown format", func(c *Config) { c.Crop.Format = "gif" }},
		{"empty output dir", func(c *Config) { c.Crop.OutputDir = "" }},
		{"no formats", func(c *Config) { c.Analyzer.SupportedFormats = nil }},
		{"bad min size", func(c *Config) { c.Analyzer.MinImageSize = 0 }},
		{"unknown backend", func(c *Config) { c.Detector.Backend = "openai" }},
		{"confidence range", func(c *Config) { c.Detector.MinConfidence = 2 }},
		{"tiny model input", func(c *Config) { c.Detector.MaxDimension = 10 }},
		{"negative blur", func(c *Config) { c.Preview.BlurSigma = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Crop.Quality = 95
			cfg.Crop.Format = "webp"
			cfg.Detector.Backend = "gemini"
			cfg.Detector.GeminiAPIKey = "secret"
			require.NoError(t, cfg.SaveToFile(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "secret")

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, 95, loaded.Crop.Quality)
			assert.Equal(t, "webp", loaded.Crop.Format)
			assert.Equal(t, "gemini", loaded.Detector.Backend)
			assert.Empty(t, loaded.Detector.GeminiAPIKey)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("crop:\n  quality: 60\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Crop.Quality)
	assert.Equal(t, "jpg", cfg.Crop.Format)
	assert.Equal(t, "ollama", cfg.Detector.Backend)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FACEBLUR_QUALITY", "70")
	t.Setenv("FACEBLUR_FORMAT", "png")
	t.Setenv("FACEBLUR_BACKEND", "llamacpp")
	t.Setenv("GEMINI_API_KEY", "key-1")
	t.Setenv("FACEBLUR_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 70, cfg.Crop.Quality)
	assert.Equal(t, "png", cfg.Crop.Format)
	assert.Equal(t, "llamacpp", cfg.Detector.Backend)
	assert.Equal(t, "key-1", cfg.Detector.GeminiAPIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("FACEBLUR_QUALITY", "abc")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 80, cfg.Crop.Quality)
}
