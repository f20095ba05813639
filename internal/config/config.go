package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/menta2k/faceblur/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Crop     CropConfig     `json:"crop" yaml:"crop"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer"`
	Detector DetectorConfig `json:"detector" yaml:"detector"`
	Preview  PreviewConfig  `json:"preview" yaml:"preview"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// CropConfig holds the compression and output policy of face crops
type CropConfig struct {
	Quality   int    `json:"quality" yaml:"quality"`
	Format    string `json:"format" yaml:"format"`
	Lossless  bool   `json:"lossless" yaml:"lossless"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// AnalyzerConfig holds configuration for source image validation
type AnalyzerConfig struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	MinImageSize     int      `json:"min_image_size" yaml:"min_image_size"`
}

// DetectorConfig selects and configures the vision model backend
type DetectorConfig struct {
	Backend       string  `json:"backend" yaml:"backend"`
	Model         string  `json:"model" yaml:"model"`
	OllamaURL     string  `json:"ollama_url" yaml:"ollama_url"`
	LlamaCppURL   string  `json:"llamacpp_url" yaml:"llamacpp_url"`
	GeminiAPIKey  string  `json:"-" yaml:"-"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
	MaxDimension  int     `json:"max_dimension" yaml:"max_dimension"`
}

// PreviewConfig holds configuration for preview rendering
type PreviewConfig struct {
	BlurSigma  float64 `json:"blur_sigma" yaml:"blur_sigma"`
	ShowHidden bool    `json:"show_hidden" yaml:"show_hidden"`
}

// LoggingConfig holds the log level and output format
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

var backends = map[string]bool{"ollama": true, "llamacpp": true, "gemini": true}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Crop: CropConfig{
			Quality:   80,
			Format:    "jpg",
			OutputDir: "./faces",
		},
		Analyzer: AnalyzerConfig{
			SupportedFormats: []string{"jpeg", "png", "webp"},
			MinImageSize:     16,
		},
		Detector: DetectorConfig{
			Backend:       "ollama",
			Model:         "llava:13b",
			OllamaURL:     "http://localhost:11434",
			LlamaCppURL:   "http://localhost:8080",
			MinConfidence: 0.3,
			MaxDimension:  1024,
		},
		Preview: PreviewConfig{
			BlurSigma: 12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// CropPolicy converts the crop section into the pipeline's policy type
func (c *Config) CropPolicy() types.CropConfig {
	return types.CropConfig{
		Quality:   c.Crop.Quality,
		Format:    c.Crop.Format,
		Lossless:  c.Crop.Lossless,
		OutputDir: c.Crop.OutputDir,
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. Fields absent
// from the file keep their default values.
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

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
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

// ApplyEnv overrides settings from FACEBLUR_* environment variables. The
// Gemini key is also read from GEMINI_API_KEY.
func (c *Config) ApplyEnv() {
	c.Crop.Quality = envInt("FACEBLUR_QUALITY", c.Crop.Quality)
	c.Crop.Format = envString("FACEBLUR_FORMAT", c.Crop.Format)
	c.Crop.OutputDir = envString("FACEBLUR_OUTPUT_DIR", c.Crop.OutputDir)
	c.Detector.Backend = envString("FACEBLUR_BACKEND", c.Detector.Backend)
	c.Detector.Model = envString("FACEBLUR_MODEL", c.Detector.Model)
	c.Detector.OllamaURL = envString("OLLAMA_URL", c.Detector.OllamaURL)
	c.Detector.LlamaCppURL = envString("LLAMACPP_URL", c.Detector.LlamaCppURL)
	c.Detector.GeminiAPIKey = envString("GEMINI_API_KEY", c.Detector.GeminiAPIKey)
	c.Detector.GeminiAPIKey = envString("FACEBLUR_GEMINI_API_KEY", c.Detector.GeminiAPIKey)
	c.Logging.Level = envString("FACEBLUR_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envString("FACEBLUR_LOG_FORMAT", c.Logging.Format)
}

// envString returns the environment variable or the default when it is unset or empty
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Crop.Quality < 1 || c.Crop.Quality > 100 {
		return fmt.Errorf("crop.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Crop.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("crop.format %q is not supported", c.Crop.Format)
	}

	if c.Crop.OutputDir == "" {
		return fmt.Errorf("crop.output_dir cannot be empty")
	}

	if c.Analyzer.MinImageSize < 1 {
		return fmt.Errorf("analyzer.min_image_size must be positive")
	}

	if len(c.Analyzer.SupportedFormats) == 0 {
		return fmt.Errorf("analyzer.supported_formats cannot be empty")
	}

	if !backends[c.Detector.Backend] {
		return fmt.Errorf("detector.backend must be one of ollama, llamacpp, gemini")
	}

	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return fmt.Errorf("detector.min_confidence must be between 0 and 1")
	}

	if c.Detector.MaxDimension < 64 {
		return fmt.Errorf("detector.max_dimension must be at least 64")
	}

	if c.Preview.BlurSigma < 0 {
		return fmt.Errorf("preview.blur_sigma cannot be negative")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "faceblur", "config.json")
}
