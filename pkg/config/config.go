/*
Package config manages TOML config for wordsplit.
*/
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/model"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/bastiangx/wordsplit/pkg/split"
	"github.com/charmbracelet/log"
)

// ErrInvalid marks a config value outside its domain.
var ErrInvalid = errors.New("invalid config")

// Config holds the entire config structure
type Config struct {
	Segment SegmentConfig `toml:"segment"`
	Model   ModelConfig   `toml:"model"`
	Corpus  CorpusConfig  `toml:"corpus"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
	Log     LogConfig     `toml:"log"`
}

// SegmentConfig bounds the search.
type SegmentConfig struct {
	MaxWordLength int `toml:"max_word_length"`
	MaxSteps      int `toml:"max_steps"`
	CacheSize     int `toml:"cache_size"`
}

// ModelConfig holds the smoothing constants.
type ModelConfig struct {
	Prior float64 `toml:"prior"`
	Base  float64 `toml:"base"`
}

// CorpusConfig locates the reference corpus and its frequency cache.
type CorpusConfig struct {
	Path                string  `toml:"path"`
	URL                 string  `toml:"url"`
	ExpectedSize        int64   `toml:"expected_size"`
	CachePath           string  `toml:"cache_path"`
	MinFrequencyPercent float64 `toml:"min_frequency_percent"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxInputLength int `toml:"max_input_length"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Color     bool `toml:"color"`
	ShowScore bool `toml:"show_score"`
}

// LogConfig sets the global log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	modelDefaults := model.DefaultOptions()
	return &Config{
		Segment: SegmentConfig{
			MaxWordLength: segment.DefaultMaxWordLength,
			MaxSteps:      0,
			CacheSize:     256,
		},
		Model: ModelConfig{
			Prior: modelDefaults.Prior,
			Base:  modelDefaults.Base,
		},
		Corpus: CorpusConfig{
			Path:                corpus.DefaultFile,
			URL:                 corpus.DefaultURL,
			ExpectedSize:        corpus.DefaultSize,
			CachePath:           "freq_counts.msgpack",
			MinFrequencyPercent: 0,
		},
		Server: ServerConfig{
			MaxInputLength: 100000,
		},
		CLI: CliConfig{
			Color:     true,
			ShowScore: false,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Segment.MaxWordLength < 1 {
		return fmt.Errorf("%w: segment.max_word_length must be at least 1, got %d", ErrInvalid, c.Segment.MaxWordLength)
	}
	if c.Segment.MaxSteps < 0 {
		return fmt.Errorf("%w: segment.max_steps must not be negative, got %d", ErrInvalid, c.Segment.MaxSteps)
	}
	if c.Segment.CacheSize < 0 {
		return fmt.Errorf("%w: segment.cache_size must not be negative, got %d", ErrInvalid, c.Segment.CacheSize)
	}
	if !(c.Model.Prior > 0) || math.IsInf(c.Model.Prior, 0) {
		return fmt.Errorf("%w: model.prior must be positive, got %v", ErrInvalid, c.Model.Prior)
	}
	if !(c.Model.Base > 0 && c.Model.Base < 1) {
		return fmt.Errorf("%w: model.base must be in (0, 1), got %v", ErrInvalid, c.Model.Base)
	}
	if c.Corpus.ExpectedSize < 0 {
		return fmt.Errorf("%w: corpus.expected_size must not be negative", ErrInvalid)
	}
	if c.Corpus.MinFrequencyPercent < 0 || c.Corpus.MinFrequencyPercent > 100 {
		return fmt.Errorf("%w: corpus.min_frequency_percent must be in [0, 100], got %v", ErrInvalid, c.Corpus.MinFrequencyPercent)
	}
	if c.Server.MaxInputLength < 1 {
		return fmt.Errorf("%w: server.max_input_length must be at least 1", ErrInvalid)
	}
	if c.Segment.MaxWordLength > c.Server.MaxInputLength {
		return fmt.Errorf("%w: segment.max_word_length %d exceeds server.max_input_length %d", ErrInvalid, c.Segment.MaxWordLength, c.Server.MaxInputLength)
	}
	return nil
}

// ModelOptions converts the model section.
func (c *Config) ModelOptions() model.Options {
	return model.Options{Prior: c.Model.Prior, Base: c.Model.Base}
}

// SegmentOptions converts the segment section.
func (c *Config) SegmentOptions() segment.Options {
	return segment.Options{MaxWordLength: c.Segment.MaxWordLength, MaxSteps: c.Segment.MaxSteps}
}

// SplitOptions bundles the engine settings for split.New.
func (c *Config) SplitOptions() split.Options {
	return split.Options{
		Model:               c.ModelOptions(),
		Segment:             c.SegmentOptions(),
		MinFrequencyPercent: c.Corpus.MinFrequencyPercent,
		CacheSize:           c.Segment.CacheSize,
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordsplit
// 2. ~/Library/Application Support/wordsplit (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordsplit")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordsplit")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordsplit/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file over the defaults
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every well-typed key of a file that failed strict decoding
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "segment"); ok {
		extractSegmentConfig(section, &config.Segment)
	}
	if section, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(section, &config.Model)
	}
	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_input_length"); ok {
			config.Server.MaxInputLength = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(section, "level"); ok {
			config.Log.Level = val
		}
	}
	return config, nil
}

func extractSegmentConfig(data map[string]any, seg *SegmentConfig) {
	if val, ok := utils.ExtractInt64(data, "max_word_length"); ok {
		seg.MaxWordLength = val
	}
	if val, ok := utils.ExtractInt64(data, "max_steps"); ok {
		seg.MaxSteps = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		seg.CacheSize = val
	}
}

func extractModelConfig(data map[string]any, m *ModelConfig) {
	if val, ok := utils.ExtractFloat64(data, "prior"); ok {
		m.Prior = val
	}
	if val, ok := utils.ExtractFloat64(data, "base"); ok {
		m.Base = val
	}
}

func extractCorpusConfig(data map[string]any, c *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		c.Path = val
	}
	if val, ok := utils.ExtractString(data, "url"); ok {
		c.URL = val
	}
	if val, ok := utils.ExtractInt64(data, "expected_size"); ok {
		c.ExpectedSize = int64(val)
	}
	if val, ok := utils.ExtractString(data, "cache_path"); ok {
		c.CachePath = val
	}
	if val, ok := utils.ExtractFloat64(data, "min_frequency_percent"); ok {
		c.MinFrequencyPercent = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "color"); ok {
		cli.Color = val
	}
	if val, ok := utils.ExtractBool(data, "show_score"); ok {
		cli.ShowScore = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
