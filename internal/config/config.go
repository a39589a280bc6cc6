package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by RequireAPIKey when API_KEY is unset.
var ErrMissingAPIKey = errors.New("API_KEY is not set; define it in the environment or in a .env file")

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	// AEMET fetch configuration.
	APIKey       string
	AEMETBaseURL string
	Year         int
	WindowDays   int
	HTTPTimeout  time.Duration

	Province  string
	YearlyCSV string
	OutputDir string
	GraphDir  string

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
	// MetricsAddr, when set, serves /healthz, /progress and /metrics during a fetch.
	MetricsAddr string

	// Optional Kafka publication of risk scores.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	year, err := parseIntEnv("YEAR", 2024)
	if err != nil {
		return nil, err
	}
	if year < 1920 || year > 2100 {
		return nil, fmt.Errorf("invalid YEAR %d", year)
	}

	windowDays, err := parseIntEnv("WINDOW_DAYS", 15)
	if err != nil {
		return nil, err
	}
	if windowDays < 1 || windowDays > 31 {
		return nil, fmt.Errorf("invalid WINDOW_DAYS %d (allowed: 1-31)", windowDays)
	}

	httpTimeout, err := time.ParseDuration(envOrDefault("HTTP_TIMEOUT", "60s"))
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	cfg := &Config{
		APIKey:          strings.TrimSpace(os.Getenv("API_KEY")),
		AEMETBaseURL:    strings.TrimRight(envOrDefault("AEMET_BASE_URL", "https://opendata.aemet.es/opendata"), "/"),
		Year:            year,
		WindowDays:      windowDays,
		HTTPTimeout:     httpTimeout,
		Province:        envOrDefault("PROVINCE", "MALAGA"),
		YearlyCSV:       envOrDefault("YEARLY_CSV", filepath.Join("csv", "datos_climatologicos_anuales.csv")),
		OutputDir:       envOrDefault("OUTPUT_DIR", "."),
		GraphDir:        envOrDefault("GRAPH_DIR", "graph"),
		LogLevel:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envOrDefault("LOG_FORMAT", "text")),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		MetricsAddr:     strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "station-risk-scores"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: text, json)", cfg.LogFormat)
	}
	if strings.TrimSpace(cfg.Province) == "" {
		return nil, errors.New("PROVINCE must not be blank")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// RequireAPIKey fails when no AEMET credential is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// KafkaEnabled reports whether risk scores should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ProvinceSlug is the lower-cased province used in output file names.
func (c *Config) ProvinceSlug() string {
	slug := strings.ToLower(strings.TrimSpace(c.Province))
	return strings.Join(strings.Fields(slug), "_")
}

// OutputPath joins name onto OutputDir.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// GraphPath joins name onto GraphDir, itself relative to OutputDir unless
// absolute.
func (c *Config) GraphPath(name string) string {
	if filepath.IsAbs(c.GraphDir) {
		return filepath.Join(c.GraphDir, name)
	}
	return filepath.Join(c.OutputDir, c.GraphDir, name)
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
