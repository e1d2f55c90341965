// Package agent supervises the bot's actions.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/channelwrapped/wrapbot/pkg/actions"
	"github.com/sirupsen/logrus"
)

type Agent struct {
	logger  *logrus.Logger
	actions map[string]actions.Action
	mu      sync.RWMutex
}

type Config struct {
	Logger *logrus.Logger
}

func New(config Config) (*Agent, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Agent{
		logger:  config.Logger,
		actions: make(map[string]actions.Action),
	}, nil
}

// RegisterAction adds a new action to the agent
func (a *Agent) RegisterAction(action actions.Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := action.Name()
	if _, exists := a.actions[name]; exists {
		return fmt.Errorf("action %s already registered", name)
	}

	a.actions[name] = action
	return nil
}

// Run starts all registered actions and blocks until ctx is cancelled, an
// action fails, or every action returns. All actions are stopped and waited
// for before Run returns.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.RLock()
	registered := make(map[string]actions.Action, len(a.actions))
	for name, action := range a.actions {
		registered[name] = action
	}
	a.mu.RUnlock()

	if len(registered) == 0 {
		return fmt.Errorf("no actions registered")
	}

	a.logger.WithField("actions", len(registered)).Info("Starting agent with registered actions")

	// Create error channel for collecting errors from actions
	errChan := make(chan error, len(registered))

	// Start each action in its own goroutine
	var wg sync.WaitGroup
	for name, action := range registered {
		wg.Add(1)
		go func() {
			defer wg.Done()

			a.logger.WithField("action", name).Info("Starting action")
			if err := action.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.WithError(err).WithField("action", name).Error("Action failed")
				errChan <- fmt.Errorf("action %s failed: %w", name, err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Wait for context cancellation, errors or completion
	select {
	case <-ctx.Done():
		a.logger.Info("Context cancelled, stopping all actions")
		a.stopAllActions(registered)
		<-done
		return ctx.Err()
	case err := <-errChan:
		a.logger.WithError(err).Error("Action error occurred")
		a.stopAllActions(registered)
		<-done
		return err
	case <-done:
		a.logger.Info("All actions completed")
		select {
		case err := <-errChan:
			return err
		default:
			return nil
		}
	}
}

// stopAllActions cleanly stops all registered actions
func (a *Agent) stopAllActions(registered map[string]actions.Action) {
	for name, action := range registered {
		a.logger.WithField("action", name).Info("Stopping action")
		action.Stop()
	}
}
