package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth and CORS
	APIKey      string // Optional; when set, /api routes require a bearer token.
	CORSOrigins []string

	// Upload limits
	MaxUploadBytes    int64
	MinExtractedChars int

	// Segmentation
	SegmentWindowWords int
	SegmentMinChars    int

	// Import worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Generation backends. Without an OpenAI key the template writer and
	// placeholder illustrator are used.
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	ImageConcurrency int

	// Rate limiting of generation routes
	RateLimitRPS   float64
	RateLimitBurst int

	// Google Docs
	GDocsBaseURL string

	// Logging
	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads configuration from the environment. A .env file (or the file
// named by ENV_FILE) is loaded first if present, and a YAML file named by
// CONFIG_FILE may supply values too. Real environment variables take
// precedence over both; keys in the YAML file are the lower-cased variable
// names (port, segment_window_words, ...).
func Load() Config {
	envFile := envOr("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		}
	}

	cfg := Config{
		Port: v.GetString("port"),

		APIKey:      v.GetString("api_key"),
		CORSOrigins: stringList(v, "cors_origins", []string{"*"}),

		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		MinExtractedChars: v.GetInt("min_extracted_chars"),

		SegmentWindowWords: v.GetInt("segment_window_words"),
		SegmentMinChars:    v.GetInt("segment_min_chars"),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),
		JobTTL:       v.GetDuration("job_ttl"),

		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),

		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIModel:      v.GetString("openai_model"),
		OpenAIImageModel: v.GetString("openai_image_model"),
		ImageConcurrency: v.GetInt("image_concurrency"),

		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),

		GDocsBaseURL: v.GetString("gdocs_base_url"),

		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		LogFile:       v.GetString("log_file"),
		LogMaxSizeMB:  v.GetInt("log_max_size_mb"),
		LogMaxBackups: v.GetInt("log_max_backups"),
		LogMaxAgeDays: v.GetInt("log_max_age_days"),
	}

	// Values that fail to parse come back as zero.
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.MinExtractedChars < 0 {
		cfg.MinExtractedChars = 10
	}
	if cfg.SegmentWindowWords <= 0 {
		cfg.SegmentWindowWords = 500
	}
	if cfg.SegmentMinChars <= 0 {
		cfg.SegmentMinChars = 50
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ImageConcurrency <= 0 {
		cfg.ImageConcurrency = 4
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "54035")
	v.SetDefault("cors_origins", "*")

	v.SetDefault("max_upload_bytes", 10<<20) // 10MB
	v.SetDefault("min_extracted_chars", 10)

	v.SetDefault("segment_window_words", 500)
	v.SetDefault("segment_min_chars", 50)

	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("job_ttl", time.Hour)

	v.SetDefault("pdf_fallback_pdftotext", true)

	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_image_model", "dall-e-3")
	v.SetDefault("image_concurrency", 4)

	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)

	v.SetDefault("gdocs_base_url", "https://docs.google.com")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty")
	}
	return nil
}

// GenerationEnabled reports whether a real generation backend is configured.
func (c Config) GenerationEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// stringList accepts a comma-separated string (environment) or a YAML list,
// dropping empty entries.
func stringList(v *viper.Viper, key string, fallback []string) []string {
	var parts []string
	switch raw := v.Get(key).(type) {
	case string:
		parts = strings.Split(raw, ",")
	case []string:
		parts = raw
	case []any:
		for _, p := range raw {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	var out []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
