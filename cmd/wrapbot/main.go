package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/channelwrapped/wrapbot/internal/wrapconfig"
	"github.com/channelwrapped/wrapbot/pkg/agent"
	"github.com/channelwrapped/wrapbot/pkg/cache"
	wrapslack "github.com/channelwrapped/wrapbot/pkg/interfaces/slack"
	"github.com/channelwrapped/wrapbot/pkg/jobs"
	"github.com/channelwrapped/wrapbot/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	log := logging.NewLogger()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slackConfig, err := wrapslack.NewSlackConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create Slack config")
	}
	// Override logger to use our main logger
	slackConfig.Logger = log

	slackClient, err := wrapslack.NewSlackClient(slackConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Slack client")
	}

	collection, err := jobs.NewCollectionConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create collection config")
	}

	cacheConfig, err := cache.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create cache config")
	}
	store, closer, err := cache.Open(ctx, cacheConfig, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open cache")
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("Failed to close cache")
		}
	}()

	bot, err := agent.New(agent.Config{Logger: log})
	if err != nil {
		log.WithError(err).Fatal("Failed to create agent")
	}

	configured, err := wrapconfig.ConfigureActions(ctx, wrapconfig.ActionConfig{
		SlackClient: slackClient,
		Collection:  collection,
		Store:       store,
		Logger:      log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to configure actions")
	}

	for _, action := range configured {
		if err := bot.RegisterAction(action); err != nil {
			log.WithError(err).Fatal("Failed to register action")
		}
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	log.WithFields(logrus.Fields{
		"cache_backend": cacheConfig.Backend,
		"timezone":      collection.Location.String(),
	}).Info("Starting wrap bot")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Agent stopped with error")
		return
	}

	log.Info("Agent shutdown complete")
}
