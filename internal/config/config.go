package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nychealth/internal"
)

type Config struct {
	DBPath            string
	OutputDir         string
	OutputCompression string
	ArchiveDir        string
	ReportSourceDir   string

	ReportBaseURL     string
	ReportMaxVersion  int
	FetchTimeoutMs    int
	FetchRateLimitRPS int
	FetchMaxAttempts  int

	BackfillMinDate *time.Time

	PollIntervalSec int
	PollStartDate   *time.Time
	PollAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:            getEnv("DB_PATH", filepath.Join(cwd, "data", "nyc.db")),
		OutputDir:         getEnv("OUTPUT_DIR", filepath.Join(cwd, "data")),
		OutputCompression: strings.ToLower(getEnv("OUTPUT_COMPRESSION", "none")),
		ArchiveDir:        getEnv("REPORT_ARCHIVE_DIR", ""),
		ReportSourceDir:   getEnv("REPORT_SOURCE_DIR", ""),

		ReportBaseURL:     getEnv("NYC_REPORT_BASE_URL", "https://www1.nyc.gov/assets/doh/downloads/pdf/imm/covid-19-daily-data-summary-"),
		ReportMaxVersion:  getEnvInt("NYC_REPORT_MAX_VERSION", 2),
		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 5000),
		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 2),
		FetchMaxAttempts:  getEnvInt("FETCH_MAX_ATTEMPTS", 3),

		PollIntervalSec: getEnvInt("POLL_INTERVAL_SEC", 3600),
		PollAutoExport:  getEnvBool("POLL_AUTO_EXPORT", false),
	}

	if cfg.BackfillMinDate, err = getEnvDate("BACKFILL_MIN_DATE"); err != nil {
		return Config{}, err
	}
	if cfg.PollStartDate, err = getEnvDate("POLL_START_DATE"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

// getEnvDate reads an optional YYYY-MM-DD date. A malformed value is an
// error rather than a fallback.
func getEnvDate(key string) (*time.Time, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return nil, nil
	}
	parsed, err := internal.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &parsed, nil
}
