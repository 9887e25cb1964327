package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name without extension.
const FileName = "tref"

// EnvPrefix prefixes environment overrides, e.g. TREF_GENERATE_JOBS.
const EnvPrefix = "TREF"

// Config represents the tref configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`
}

// GenerateConfig represents generator configuration
type GenerateConfig struct {
	Output       string `mapstructure:"output"`
	IncludeTests bool   `mapstructure:"include_tests"`
	Jobs         int    `mapstructure:"jobs"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Ignore   []string      `mapstructure:"ignore"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Output: "tref_gen.go",
			Jobs:   4,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
			Ignore:   []string{"*_gen.go", "*.swp", "*~"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads the configuration from tref.yaml or tref.yml in the current
// directory.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("generate.output", def.Generate.Output)
	v.SetDefault("generate.include_tests", def.Generate.IncludeTests)
	v.SetDefault("generate.jobs", def.Generate.Jobs)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
	v.SetDefault("watch.ignore", def.Watch.Ignore)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration values
func Validate(cfg *Config) error {
	if !strings.HasSuffix(cfg.Generate.Output, ".go") || strings.ContainsRune(cfg.Generate.Output, filepath.Separator) {
		return fmt.Errorf("generate.output must be a .go file name, got: %q", cfg.Generate.Output)
	}
	if strings.HasSuffix(cfg.Generate.Output, "_test.go") {
		return fmt.Errorf("generate.output must not be a test file, got: %q", cfg.Generate.Output)
	}
	if cfg.Generate.Jobs < 1 {
		return fmt.Errorf("generate.jobs must be at least 1, got: %d", cfg.Generate.Jobs)
	}
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got: %s", cfg.Watch.Debounce)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %q", cfg.Log.Format)
	}
	return nil
}

// Marshal renders cfg as the YAML written by tref init.
func Marshal(cfg *Config) ([]byte, error) {
	doc := map[string]any{
		"generate": map[string]any{
			"output":        cfg.Generate.Output,
			"include_tests": cfg.Generate.IncludeTests,
			"jobs":          cfg.Generate.Jobs,
		},
		"watch": map[string]any{
			"debounce": cfg.Watch.Debounce.String(),
			"ignore":   cfg.Watch.Ignore,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}
	return yaml.Marshal(doc)
}

// Write saves cfg as tref.yaml in dir. It fails if a configuration file
// already exists unless force is set.
func Write(dir string, cfg *Config, force bool) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}
	if !force {
		if existing := Find(dir); existing != "" {
			return "", fmt.Errorf("%s already exists", existing)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	path := filepath.Join(dir, FileName+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Find returns the configuration file in dir, or "".
func Find(dir string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, FileName+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// GetProjectRoot walks up from the working directory to the first directory
// with a tref.yaml or a go.mod.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if Find(dir) != "" {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod or tref.yaml found)")
		}
		dir = parent
	}
}
