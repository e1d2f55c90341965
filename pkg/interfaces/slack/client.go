// Package slack adapts the Slack Web API and socket mode to the wrap pipeline:
// message search and channel history sources, identity and channel lookups,
// emoji icons, threaded replies and app mention events.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
	slackgo "github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const limiterBurst = 5

// ClientOption allows for customization of the client
type ClientOption func(*SlackClient)

// WithHTTPClient replaces the HTTP client used for Web API calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *SlackClient) {
		c.httpClient = httpClient
	}
}

// SlackClient holds the bot and user API clients behind one rate limiter.
// search.messages needs a user token, everything else runs as the bot.
type SlackClient struct {
	config     *SlackConfig
	bot        *slackgo.Client
	user       *slackgo.Client
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewSlackClient(config *SlackConfig, opts ...ClientOption) (*SlackClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := &SlackClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RateLimitPerMinute)), limiterBurst),
		logger:     config.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.bot = slackgo.New(config.BotToken,
		slackgo.OptionAPIURL(config.APIURL),
		slackgo.OptionHTTPClient(client.httpClient),
		slackgo.OptionAppLevelToken(config.AppToken),
	)
	client.user = slackgo.New(config.UserToken,
		slackgo.OptionAPIURL(config.APIURL),
		slackgo.OptionHTTPClient(client.httpClient),
	)

	return client, nil
}

// call waits for the limiter, runs fn and maps Slack errors onto the
// pipeline's sentinels.
func (c *SlackClient) call(ctx context.Context, method string, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	err := fn()
	if err == nil {
		return nil
	}

	err = mapError(err)
	fields := logrus.Fields{"method": method}
	var rateLimited *slackgo.RateLimitedError
	if errors.As(err, &rateLimited) {
		fields["retry_after"] = rateLimited.RetryAfter.String()
	}
	c.logger.WithError(err).WithFields(fields).Debug("Slack API call failed")

	return fmt.Errorf("%s: %w", method, err)
}

// notAccessible lists Slack error codes meaning the bot cannot read the channel.
var notAccessible = map[string]bool{
	"channel_not_found": true,
	"not_in_channel":    true,
	"is_archived":       true,
	"missing_scope":     true,
	"access_denied":     true,
}

// transient lists Slack error codes worth retrying.
var transient = map[string]bool{
	"ratelimited":         true,
	"internal_error":      true,
	"fatal_error":         true,
	"service_unavailable": true,
	"request_timeout":     true,
}

func mapError(err error) error {
	var apiErr slackgo.SlackErrorResponse
	if errors.As(err, &apiErr) && notAccessible[apiErr.Err] {
		return fmt.Errorf("%w: %s", wrapped.ErrChannelNotAccessible, apiErr.Err)
	}
	return err
}

// Retryable reports whether a failed call may succeed on a later attempt.
// It is the backoff.Config.Retryable hook for every Slack-backed source.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, wrapped.ErrChannelNotAccessible) || errors.Is(err, context.Canceled) {
		return false
	}

	var rateLimited *slackgo.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}
	var status slackgo.StatusCodeError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}
	var apiErr slackgo.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return transient[apiErr.Err]
	}
	// network and decoding failures
	return true
}
