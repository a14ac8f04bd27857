package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Baseline names accepted by ANOMALY_BASELINE.
const (
	BaselineInclusive   = "inclusive"
	BaselineLeaveOneOut = "leave-one-out"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	TemperaturePath   string
	PrecipitationPath string
	CoordinatesPath   string
	Delimiter         rune

	RollingWindow   int
	AnomalyBaseline string
	HistogramBins   int
	ViewCacheSize   int

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset.
func Load() (*Config, error) {
	// A missing .env is the normal case; real environment variables win.
	_ = godotenv.Load(".env")

	delimiter, err := parseDelimiter(envOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}
	window, err := parseBoundedInt("ROLLING_WINDOW", 7, 1, 366)
	if err != nil {
		return nil, err
	}
	bins, err := parseBoundedInt("HISTOGRAM_BINS", 20, 1, 500)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseBoundedInt("VIEW_CACHE_SIZE", 32, 1, 1<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TemperaturePath:   envOrDefault("TEMPERATURE_CSV", "MAESTRO_TEMPERATURAS_FINAL_COMPLETO.csv"),
		PrecipitationPath: envOrDefault("PRECIPITATION_CSV", "MAESTRO_PRECIPITACIONES_FINAL_COMPLETO.csv"),
		CoordinatesPath:   envOrDefault("COORDINATES_CSV", "coordenadas.csv"),
		Delimiter:         delimiter,

		RollingWindow:   window,
		AnomalyBaseline: strings.ToLower(envOrDefault("ANOMALY_BASELINE", BaselineInclusive)),
		HistogramBins:   bins,
		ViewCacheSize:   cacheSize,

		LogLevel:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		MetricsTextfile: strings.TrimSpace(os.Getenv("METRICS_TEXTFILE")),
	}

	switch cfg.AnomalyBaseline {
	case BaselineInclusive, BaselineLeaveOneOut:
	default:
		return nil, fmt.Errorf("invalid ANOMALY_BASELINE %q (allowed: %s, %s)", cfg.AnomalyBaseline, BaselineInclusive, BaselineLeaveOneOut)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text", "tint":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text, tint)", cfg.LogFormat)
	}

	return cfg, nil
}

// envOrDefault returns the trimmed value of key, or fallback when unset or blank.
func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBoundedInt(key string, fallback, lo, hi int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q: must be an integer between %d and %d", key, s, lo, hi)
	}
	return n, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, errors.New("CSV_DELIMITER must be a single character")
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("CSV_DELIMITER %q is not allowed", r)
	}
	return r, nil
}
