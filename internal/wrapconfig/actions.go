package wrapconfig

import (
	"context"
	"fmt"

	"github.com/channelwrapped/wrapbot/pkg/actions"
	"github.com/channelwrapped/wrapbot/pkg/backoff"
	"github.com/channelwrapped/wrapbot/pkg/cache"
	wrapslack "github.com/channelwrapped/wrapbot/pkg/interfaces/slack"
	"github.com/channelwrapped/wrapbot/pkg/jobs"
	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
)

type ActionConfig struct {
	SlackClient *wrapslack.SlackClient
	Collection  *jobs.CollectionConfig
	Store       cache.Store
	Logger      *logrus.Logger
}

// ConfigureActions wires the wrap pipeline behind the mention handler.
func ConfigureActions(ctx context.Context, config ActionConfig) ([]actions.Action, error) {
	if config.SlackClient == nil || config.Collection == nil || config.Store == nil {
		return nil, fmt.Errorf("slack client, collection config and store are required")
	}
	if err := config.Collection.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collection config: %w", err)
	}

	retry := config.Collection.Retry
	retry.Retryable = wrapslack.Retryable
	executor := backoff.NewExecutor(retry, config.Logger)

	aggregator, err := wrapped.NewAggregator(wrapped.AggregatorConfig{
		Sources:          config.SlackClient,
		Identities:       config.SlackClient,
		Icons:            config.SlackClient.LoadEmoji(ctx),
		Executor:         executor,
		SearchPageDelay:  config.Collection.SearchPageDelay,
		HistoryPageDelay: config.Collection.HistoryPageDelay,
		ProgressEvery:    config.Collection.ProgressEvery,
		Location:         config.Collection.Location,
		Logger:           config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregator: %w", err)
	}

	controller, err := jobs.NewController(jobs.Config{
		Aggregator: aggregator,
		Cache:      cache.New(config.Store, config.Logger),
		JobTimeout: config.Collection.JobTimeout,
		Logger:     config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job controller: %w", err)
	}

	mentionsAction, err := actions.NewWrapMentionsHandler(
		config.SlackClient.NewMentionListener(),
		config.SlackClient,
		controller,
		config.Logger,
		actions.WrapMentionsOptions{
			Location: config.Collection.Location,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mentions handler: %w", err)
	}

	return []actions.Action{mentionsAction}, nil
}
