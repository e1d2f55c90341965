package actions

import (
	"context"
)

// Action represents a single long-running action supervised by the agent
type Action interface {
	// Name returns the unique identifier for this action
	Name() string
	// Execute runs the action until ctx ends or Stop is called
	Execute(ctx context.Context) error
	// Stop cleanly stops the action
	Stop()
}
