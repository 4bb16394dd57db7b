package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"writing_coach/internal/cache"
	"writing_coach/internal/coach"
	"writing_coach/internal/languagetool"
	"writing_coach/internal/logging"
	"writing_coach/internal/orchestrator"
	"writing_coach/internal/paragraph"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
	"writing_coach/internal/structure"
	"writing_coach/internal/style"
	"writing_coach/internal/vocabulary"
)

// DefaultYAML is written to new workspaces. It mirrors Default.
//
//go:embed default.yaml
var DefaultYAML []byte

type Config struct {
	Debounce          time.Duration       `yaml:"debounce" validate:"gte=0"`
	ParagraphMinChars int                 `yaml:"paragraph_min_chars" validate:"gte=1"`
	Workers           int                 `yaml:"workers" validate:"gte=0"`
	Database          string              `yaml:"database"`
	Analyzers         Analyzers           `yaml:"analyzers"`
	Rubric            rubric.Config       `yaml:"rubric"`
	LanguageTool      languagetool.Config `yaml:"languagetool"`
	Cache             Cache               `yaml:"cache"`
	Coach             coach.Config        `yaml:"coach"`
	Server            Server              `yaml:"server"`
	Log               logging.Config      `yaml:"log"`
}

type Analyzers struct {
	Tier            string           `yaml:"tier" validate:"oneof=high medium low"`
	VocabularyLimit int              `yaml:"vocabulary_limit" validate:"gte=1"`
	Style           bool             `yaml:"style"`
	StyleLimit      int              `yaml:"style_limit" validate:"gte=1"`
	Structure       structure.Config `yaml:"structure"`
}

type Cache struct {
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
	MaxEntries int           `yaml:"max_entries" validate:"gte=0"`
	RedisURL   string        `yaml:"redis_url" validate:"omitempty,url"`
}

type Server struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	MaxTextBytes    int           `yaml:"max_text_bytes" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

func Default() Config {
	return Config{
		Debounce:          orchestrator.DefaultDebounce,
		ParagraphMinChars: paragraph.DefaultMinChars,
		Analyzers: Analyzers{
			Tier:            string(vocabulary.TierMedium),
			VocabularyLimit: vocabulary.DefaultLimit,
			Style:           true,
			StyleLimit:      style.DefaultLimit,
			Structure:       structure.DefaultConfig(),
		},
		Rubric:       rubric.DefaultConfig(),
		LanguageTool: languagetool.DefaultConfig(),
		Cache:        Cache{TTL: cache.DefaultTTL, MaxEntries: cache.DefaultMaxEntries},
		Coach:        coach.DefaultConfig(),
		Server:       Server{Addr: "127.0.0.1:8087", MaxTextBytes: 200000, ShutdownTimeout: 10 * time.Second},
		Log:          logging.DefaultConfig(),
	}
}

// Load reads path over the defaults, then envPath, then COACH_* environment
// overrides, and validates the result. Missing files are not errors.
func Load(path, envPath string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Debounce = getenvDuration("COACH_DEBOUNCE", c.Debounce)
	c.ParagraphMinChars = getenvInt("COACH_PARAGRAPH_MIN_CHARS", c.ParagraphMinChars)
	c.Workers = getenvInt("COACH_WORKERS", c.Workers)
	c.Database = getenv("COACH_DATABASE", c.Database)
	c.Analyzers.Tier = getenv("COACH_TIER", c.Analyzers.Tier)
	c.Analyzers.Style = getenvBool("COACH_STYLE", c.Analyzers.Style)

	c.LanguageTool.Enabled = getenvBool("COACH_LANGUAGETOOL_ENABLED", c.LanguageTool.Enabled)
	c.LanguageTool.Endpoint = getenv("COACH_LANGUAGETOOL_ENDPOINT", c.LanguageTool.Endpoint)
	c.LanguageTool.APIKey = getenv("COACH_LANGUAGETOOL_API_KEY", c.LanguageTool.APIKey)
	c.LanguageTool.Username = getenv("COACH_LANGUAGETOOL_USERNAME", c.LanguageTool.Username)
	c.LanguageTool.Language = getenv("COACH_LANGUAGE", c.LanguageTool.Language)
	c.LanguageTool.MinInterval = getenvDuration("COACH_LANGUAGETOOL_MIN_INTERVAL", c.LanguageTool.MinInterval)

	c.Cache.RedisURL = getenv("COACH_REDIS_URL", c.Cache.RedisURL)

	c.Coach.Provider = getenv("COACH_PROVIDER", c.Coach.Provider)
	c.Coach.Model = getenv("COACH_MODEL", c.Coach.Model)
	c.Coach.BaseURL = getenv("COACH_BASE_URL", c.Coach.BaseURL)
	c.Coach.APIKey = getenv("COACH_API_KEY", getenv("OPENAI_API_KEY", c.Coach.APIKey))
	c.Coach.Temperature = float32(getenvFloat("COACH_TEMPERATURE", float64(c.Coach.Temperature)))

	c.Server.Addr = getenv("COACH_ADDR", c.Server.Addr)
	c.Log.Level = getenv("COACH_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("COACH_LOG_FORMAT", c.Log.Format)
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Rubric.HighDiversity < c.Rubric.MinDiversity {
		return fmt.Errorf("invalid config: rubric.high_diversity %.2f below min_diversity %.2f", c.Rubric.HighDiversity, c.Rubric.MinDiversity)
	}
	if s := c.Analyzers.Structure; s.ShortSentenceWords >= s.LongSentenceWords {
		return fmt.Errorf("invalid config: short_sentence_words %d must be below long_sentence_words %d", s.ShortSentenceWords, s.LongSentenceWords)
	}
	return nil
}

// PipelineSettings maps the analyzer section onto pipeline settings.
func (c Config) PipelineSettings() (pipeline.Settings, error) {
	tier, err := vocabulary.ParseTier(c.Analyzers.Tier)
	if err != nil {
		return pipeline.Settings{}, err
	}
	return pipeline.Settings{
		Tier:            tier,
		VocabularyLimit: c.Analyzers.VocabularyLimit,
		Structure:       c.Analyzers.Structure,
		StyleLimit:      c.Analyzers.StyleLimit,
		Style:           c.Analyzers.Style,
	}, nil
}

func getenv(name, fallback string) string {
	if raw, ok := os.LookupEnv(name); ok {
		return strings.TrimSpace(raw)
	}
	return fallback
}

func getenvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	return raw == "1" || raw == "true" || raw == "yes" || raw == "on"
}
