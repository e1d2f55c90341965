package slack

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultAPIURL = "https://slack.com/api/"

type SlackConfig struct {
	// API Authentication
	BotToken  string
	AppToken  string
	UserToken string

	// APIURL overrides the Web API base, mainly for tests
	APIURL string

	// Rate Limiting
	RateLimitPerMinute int
	RequestTimeout     time.Duration

	// Page sizes
	SearchPageSize  int
	HistoryPageSize int

	Logger *logrus.Logger
}

func NewSlackConfig() (*SlackConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	rateLimit, err := strconv.Atoi(getEnvOrDefault("SLACK_RATE_LIMIT_PER_MINUTE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLACK_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	timeoutSeconds, err := strconv.Atoi(getEnvOrDefault("SLACK_REQUEST_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLACK_REQUEST_TIMEOUT_SECONDS: %w", err)
	}
	searchPageSize, err := strconv.Atoi(getEnvOrDefault("SLACK_SEARCH_PAGE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLACK_SEARCH_PAGE_SIZE: %w", err)
	}
	historyPageSize, err := strconv.Atoi(getEnvOrDefault("SLACK_HISTORY_PAGE_SIZE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLACK_HISTORY_PAGE_SIZE: %w", err)
	}

	config := &SlackConfig{
		BotToken:           os.Getenv("SLACK_BOT_TOKEN"),
		AppToken:           os.Getenv("SLACK_APP_TOKEN"),
		UserToken:          os.Getenv("SLACK_USER_TOKEN"),
		APIURL:             getEnvOrDefault("SLACK_API_URL", defaultAPIURL),
		RateLimitPerMinute: rateLimit,
		RequestTimeout:     time.Duration(timeoutSeconds) * time.Second,
		SearchPageSize:     searchPageSize,
		HistoryPageSize:    historyPageSize,
		Logger:             logrus.New(),
	}

	config.Logger.WithFields(logrus.Fields{
		"bot_token_exists":  config.BotToken != "",
		"app_token_exists":  config.AppToken != "",
		"user_token_exists": config.UserToken != "",
		"api_url":           config.APIURL,
		"rate_limit":        config.RateLimitPerMinute,
	}).Debug("Slack config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *SlackConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	if c.UserToken == "" {
		return fmt.Errorf("SLACK_USER_TOKEN is required for message search")
	}
	if !strings.HasPrefix(c.AppToken, "xapp-") {
		return fmt.Errorf("SLACK_APP_TOKEN must be an app-level token (xapp-...)")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.SearchPageSize < 1 || c.SearchPageSize > 100 {
		return fmt.Errorf("search page size must be between 1 and 100")
	}
	if c.HistoryPageSize < 1 || c.HistoryPageSize > 999 {
		return fmt.Errorf("history page size must be between 1 and 999")
	}

	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if !strings.HasSuffix(c.APIURL, "/") {
		c.APIURL += "/"
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
