// Package jobs runs wrap jobs: at most one per channel, served from the cache
// when possible, otherwise collected, merged and cached.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State names a step of a job's lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateLocked     State = "locked"
	StateCacheHit   State = "cache_hit"
	StateCollecting State = "collecting"
	StateMerging    State = "merging"
	StateCaching    State = "caching"
	StateFailed     State = "failed"
)

// Status is the outcome of Run.
type Status string

const (
	// StatusCompleted means the summary was collected and cached
	StatusCompleted Status = "completed"
	// StatusCached means the summary came from the cache
	StatusCached Status = "cached"
	// StatusBusy means another job holds the channel; nothing was done
	StatusBusy Status = "busy"
	// StatusFailed means collection failed; the error is a *JobError
	StatusFailed Status = "failed"
)

// SummaryCache is the subset of cache.Cache the controller uses.
type SummaryCache interface {
	Get(ctx context.Context, channelID string, year int) (*wrapped.WrapSummary, bool)
	Put(ctx context.Context, channelID string, year int, summary *wrapped.WrapSummary)
}

// Aggregator produces a summary for one request.
type Aggregator interface {
	Aggregate(ctx context.Context, req wrapped.Request, progress wrapped.ProgressReporter) (*wrapped.WrapSummary, error)
}

// Request is one wrap job.
type Request struct {
	ChannelID   string
	ChannelName string
	CallerID    string
	Period      wrapped.Period
}

// Result describes how a job ended.
type Result struct {
	JobID   string
	Status  Status
	Summary *wrapped.WrapSummary
}

// Config holds the controller's collaborators.
type Config struct {
	Aggregator Aggregator
	Cache      SummaryCache
	// Lock is shared by every controller that must exclude each other. Nil creates a private one.
	Lock *ChannelLock
	// JobTimeout bounds collection. Zero means no deadline.
	JobTimeout time.Duration
	Logger     *logrus.Logger
}

// Controller gates and runs wrap jobs.
type Controller struct {
	aggregator Aggregator
	cache      SummaryCache
	lock       *ChannelLock
	timeout    time.Duration
	logger     *logrus.Logger
	newID      func() string
}

// NewController validates config.
func NewController(config Config) (*Controller, error) {
	if config.Aggregator == nil {
		return nil, fmt.Errorf("aggregator is required")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if config.Lock == nil {
		config.Lock = NewChannelLock()
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Controller{
		aggregator: config.Aggregator,
		cache:      config.Cache,
		lock:       config.Lock,
		timeout:    config.JobTimeout,
		logger:     config.Logger,
		newID:      func() string { return uuid.New().String() },
	}, nil
}

// Active reports whether a job currently holds channelID.
func (c *Controller) Active(channelID string) bool {
	return c.lock.Held(channelID)
}

// Run executes one job. A second job for a channel that is already running
// returns StatusBusy immediately with a nil error. Collection failures return
// StatusFailed with a *JobError. The channel lock is released on every path.
func (c *Controller) Run(ctx context.Context, req Request, notifier Notifier) (Result, error) {
	jobID := c.newID()
	year := req.Period.Year()
	log := c.logger.WithFields(logrus.Fields{
		"job_id":     jobID,
		"channel_id": req.ChannelID,
		"caller_id":  req.CallerID,
		"year":       year,
	})

	if !c.lock.TryAcquire(req.ChannelID) {
		log.Info("Channel already being wrapped, rejecting job")
		return Result{JobID: jobID, Status: StatusBusy}, nil
	}
	defer func() {
		c.lock.Release(req.ChannelID)
		transition(log, StateLocked, StateIdle)
	}()
	transition(log, StateIdle, StateLocked)

	if summary, ok := c.cache.Get(ctx, req.ChannelID, year); ok {
		transition(log, StateLocked, StateCacheHit)
		return Result{JobID: jobID, Status: StatusCached, Summary: summary}, nil
	}

	transition(log, StateLocked, StateCollecting)
	started := time.Now()

	summary, err := c.collect(ctx, req, notifier, log)
	if err != nil {
		jobErr := Classify(jobID, err)
		log.WithError(err).WithField("kind", jobErr.Kind.String()).Error("Job failed")
		transition(log, StateCollecting, StateFailed)
		return Result{JobID: jobID, Status: StatusFailed}, jobErr
	}

	transition(log, StateMerging, StateCaching)
	c.cache.Put(ctx, req.ChannelID, year, summary)

	log.WithFields(logrus.Fields{
		"total_messages": summary.TotalMessages,
		"duration":       time.Since(started).String(),
	}).Info("Job completed")

	return Result{JobID: jobID, Status: StatusCompleted, Summary: summary}, nil
}

func (c *Controller) collect(ctx context.Context, req Request, notifier Notifier, log *logrus.Entry) (*wrapped.WrapSummary, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var progress wrapped.ProgressReporter
	if notifier != nil {
		pump := startProgress(ctx, notifier, log)
		defer pump.stop()
		progress = pump.report
	}

	summary, err := c.aggregator.Aggregate(ctx, wrapped.Request{
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		CallerID:    req.CallerID,
		Period:      req.Period,
	}, progress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("collection timed out after %s: %w", c.timeout, err)
		}
		return nil, err
	}
	transition(log, StateCollecting, StateMerging)
	return summary, nil
}

func transition(log *logrus.Entry, from, to State) {
	log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("Job transition")
}
