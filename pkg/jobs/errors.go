package jobs

import (
	"errors"
	"fmt"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
)

// FailureKind separates failures the caller can act on from opaque ones.
type FailureKind int

const (
	// FailureGeneric covers every failure without a caller-actionable cause
	FailureGeneric FailureKind = iota
	// FailureChannelNotAccessible means the bot cannot read the channel
	FailureChannelNotAccessible
)

func (k FailureKind) String() string {
	switch k {
	case FailureChannelNotAccessible:
		return "channel_not_accessible"
	default:
		return "generic"
	}
}

// JobError is returned by Controller.Run when a job fails.
type JobError struct {
	JobID string
	Kind  FailureKind
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s failed (%s): %v", e.JobID, e.Kind, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the person who requested the job.
func (e *JobError) UserMessage() string {
	if e.Kind == FailureChannelNotAccessible {
		return "I can't read this channel. Invite me to it and try again."
	}
	return "Something went wrong while wrapping this channel."
}

// Classify wraps a failure, marking whether the caller can fix it.
func Classify(jobID string, err error) *JobError {
	kind := FailureGeneric
	if errors.Is(err, wrapped.ErrChannelNotAccessible) {
		kind = FailureChannelNotAccessible
	}
	return &JobError{JobID: jobID, Kind: kind, Err: err}
}
