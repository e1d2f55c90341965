package jobs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/backoff"
	"github.com/channelwrapped/wrapbot/pkg/wrapped"
)

// CollectionConfig holds the tuning shared by every job.
type CollectionConfig struct {
	SearchPageDelay  time.Duration
	HistoryPageDelay time.Duration
	Retry            backoff.Config
	JobTimeout       time.Duration
	Location         *time.Location
	ProgressEvery    int
}

// NewCollectionConfig reads WRAP_* environment variables, falling back to the
// package defaults.
func NewCollectionConfig() (*CollectionConfig, error) {
	searchDelay, err := envMillis("WRAP_SEARCH_PAGE_DELAY_MS", wrapped.DefaultSearchPageDelay)
	if err != nil {
		return nil, err
	}
	historyDelay, err := envMillis("WRAP_HISTORY_PAGE_DELAY_MS", wrapped.DefaultHistoryPageDelay)
	if err != nil {
		return nil, err
	}
	retryBase, err := envMillis("WRAP_RETRY_BASE_MS", backoff.DefaultBaseDelay)
	if err != nil {
		return nil, err
	}
	retryCap, err := envMillis("WRAP_RETRY_CAP_MS", backoff.DefaultMaxDelay)
	if err != nil {
		return nil, err
	}
	attempts, err := envInt("WRAP_RETRY_ATTEMPTS", backoff.DefaultMaxAttempts)
	if err != nil {
		return nil, err
	}
	timeoutSeconds, err := envInt("WRAP_JOB_TIMEOUT_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	progressEvery, err := envInt("WRAP_PROGRESS_EVERY", wrapped.DefaultProgressEvery)
	if err != nil {
		return nil, err
	}

	location := time.Local
	if name := os.Getenv("WRAP_TIMEZONE"); name != "" {
		location, err = time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid WRAP_TIMEZONE: %w", err)
		}
	}

	config := &CollectionConfig{
		SearchPageDelay:  searchDelay,
		HistoryPageDelay: historyDelay,
		Retry: backoff.Config{
			MaxAttempts: attempts,
			BaseDelay:   retryBase,
			MaxDelay:    retryCap,
		},
		JobTimeout:    time.Duration(timeoutSeconds) * time.Second,
		Location:      location,
		ProgressEvery: progressEvery,
	}
	return config, config.Validate()
}

// Validate checks the values are usable.
func (c *CollectionConfig) Validate() error {
	if c.SearchPageDelay < 0 || c.HistoryPageDelay < 0 {
		return fmt.Errorf("page delays cannot be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be positive")
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry delays must satisfy 0 < base <= cap")
	}
	if c.JobTimeout < 0 {
		return fmt.Errorf("job timeout cannot be negative")
	}
	if c.ProgressEvery < 1 {
		return fmt.Errorf("progress interval must be positive")
	}
	return nil
}

func envInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envMillis(key string, defaultValue time.Duration) (time.Duration, error) {
	ms, err := envInt(key, int(defaultValue/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
