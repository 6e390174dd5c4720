// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"songsched/schedule"
)

// Config holds all application configuration for schedule optimization.
type Config struct {
	// RankingsPath is the location of the rankings.json catalog
	RankingsPath string `json:"rankings_path"`
	// SchedulePath is where optimization runs are saved
	SchedulePath string `json:"schedule_path"`
	// ScheduleCSVPath is where the CSV export of a run lands ("" disables it)
	ScheduleCSVPath string `json:"schedule_csv_path"`
	// HistoryDBPath is the sqlite posting-history database
	HistoryDBPath string `json:"history_db_path"`

	// APIKeys are the YouTube Data API keys, tried in order
	APIKeys []string `json:"api_keys"`

	// MinIntervalHours is the minimum gap between consecutive posts
	MinIntervalHours int `json:"min_interval_hours"`
	// MaxPostsPerDay caps posts per calendar day
	MaxPostsPerDay int `json:"max_posts_per_day"`
	// MaxDaysAhead bounds the scheduling horizon in days
	MaxDaysAhead int `json:"max_days_ahead"`
	// PreferredHours break ties between equally-scoring slots
	PreferredHours []int `json:"preferred_hours"`
	// AvoidHours are never scheduled
	AvoidHours []int `json:"avoid_hours"`
	// PreferredWeekdays restricts which weekdays free-mode search may pick,
	// Monday=0 through Sunday=6. Empty allows all seven days
	PreferredWeekdays []int `json:"preferred_weekdays"`
	// FallbackHour is used for day-shifted and heuristic slots
	FallbackHour int `json:"fallback_hour"`
	// SearchParallelism bounds the worker pool for fixed-date searches
	SearchParallelism int `json:"search_parallelism"`

	// PredictTimeout caps a single view-prediction call
	PredictTimeout time.Duration `json:"predict_timeout"`

	// MaxRetries is the maximum number of retries for failed API operations
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `json:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1)
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		RankingsPath:      "rankings.json",
		SchedulePath:      "schedule.json",
		ScheduleCSVPath:   "schedule.csv",
		HistoryDBPath:     "songsched.sqlite3",
		MinIntervalHours:  6,
		MaxPostsPerDay:    2,
		MaxDaysAhead:      90,
		PreferredHours:    []int{18, 19, 20, 21},
		AvoidHours:        []int{0, 1, 2, 3, 4, 5},
		FallbackHour:      18,
		SearchParallelism: 4,
		PredictTimeout:    2 * time.Second,
		MaxRetries:        5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from songsched.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"songsched.json",
		filepath.Join(os.Getenv("HOME"), ".config", "songsched", "songsched.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("SONGSCHED_RANKINGS_PATH"); v != "" {
		c.RankingsPath = v
	}
	if v := os.Getenv("SONGSCHED_SCHEDULE_PATH"); v != "" {
		c.SchedulePath = v
	}
	if v := os.Getenv("SONGSCHED_SCHEDULE_CSV_PATH"); v != "" {
		c.ScheduleCSVPath = v
	}
	if v := os.Getenv("SONGSCHED_HISTORY_DB_PATH"); v != "" {
		c.HistoryDBPath = v
	}
	if v := os.Getenv("SONGSCHED_API_KEYS"); v != "" {
		c.APIKeys = splitList(v)
	}
	if v := os.Getenv("SONGSCHED_MIN_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinIntervalHours = n
		}
	}
	if v := os.Getenv("SONGSCHED_MAX_POSTS_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPostsPerDay = n
		}
	}
	if v := os.Getenv("SONGSCHED_MAX_DAYS_AHEAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDaysAhead = n
		}
	}
	if v := os.Getenv("SONGSCHED_PREFERRED_HOURS"); v != "" {
		if hours, err := parseIntList(v); err == nil {
			c.PreferredHours = hours
		}
	}
	if v := os.Getenv("SONGSCHED_AVOID_HOURS"); v != "" {
		if hours, err := parseIntList(v); err == nil {
			c.AvoidHours = hours
		}
	}
	if v := os.Getenv("SONGSCHED_PREFERRED_WEEKDAYS"); v != "" {
		if days, err := parseIntList(v); err == nil {
			c.PreferredWeekdays = days
		}
	}
	if v := os.Getenv("SONGSCHED_FALLBACK_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FallbackHour = n
		}
	}
	if v := os.Getenv("SONGSCHED_SEARCH_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchParallelism = n
		}
	}
	if v := os.Getenv("SONGSCHED_PREDICT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PredictTimeout = d
		}
	}
	if v := os.Getenv("SONGSCHED_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("SONGSCHED_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("SONGSCHED_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
	if v := os.Getenv("SONGSCHED_BACKOFF_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BackoffMultiplier = f
		}
	}
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.RankingsPath == "" {
		return fmt.Errorf("rankings_path must not be empty")
	}
	if c.PredictTimeout <= 0 {
		return fmt.Errorf("predict_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	for _, d := range c.PreferredWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("preferred_weekdays entry %d out of range (Monday=0 through Sunday=6)", d)
		}
	}
	// The scheduling fields get the scheduler's own validation.
	if err := c.Constraints().Validate(); err != nil {
		return err
	}
	return nil
}

// Constraints converts the configuration into the scheduler's constraint set.
// Weekdays translate from the config's Monday=0 indexing to time.Weekday.
func (c *Config) Constraints() schedule.Constraints {
	var days []time.Weekday
	for _, d := range c.PreferredWeekdays {
		days = append(days, time.Weekday((d+1)%7))
	}
	return schedule.Constraints{
		MinIntervalHours:  c.MinIntervalHours,
		MaxPostsPerDay:    c.MaxPostsPerDay,
		MaxDaysAhead:      c.MaxDaysAhead,
		PreferredHours:    c.PreferredHours,
		AvoidHours:        c.AvoidHours,
		PreferredWeekdays: days,
		FallbackHour:      c.FallbackHour,
		SearchParallelism: c.SearchParallelism,
	}
}

// splitList splits a comma-separated env value, trimming whitespace.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseIntList parses a comma-separated integer list like "18,19,20".
func parseIntList(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse list entry %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
