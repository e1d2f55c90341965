package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	wrapslack "github.com/channelwrapped/wrapbot/pkg/interfaces/slack"
	"github.com/channelwrapped/wrapbot/pkg/jobs"
	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
)

// MentionListener delivers app mentions until ctx ends.
type MentionListener interface {
	Listen(ctx context.Context, handle func(wrapslack.Mention)) error
}

// Messenger is the chat surface the handler replies through.
type Messenger interface {
	PostThreadReply(ctx context.Context, channelID, threadTS, text string) (string, error)
	UpdateMessage(ctx context.Context, channelID, ts, text string) error
	PostSummary(ctx context.Context, channelID, threadTS string, year int, callerID string, summary *wrapped.WrapSummary) error
	ChannelName(ctx context.Context, channelID string) (string, error)
}

// JobRunner runs one wrap job; jobs.Controller implements it.
type JobRunner interface {
	Run(ctx context.Context, req jobs.Request, notifier jobs.Notifier) (jobs.Result, error)
}

type WrapMentionsOptions struct {
	// Location decides the default year and the period boundaries
	Location *time.Location
	Phrases  *Phrases
	Now      func() time.Time
}

// WrapMentionsHandler answers "@bot wrap [year]" mentions with a channel summary.
type WrapMentionsHandler struct {
	listener  MentionListener
	messenger Messenger
	runner    JobRunner
	logger    *logrus.Logger
	options   WrapMentionsOptions

	mu      sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewWrapMentionsHandler creates a new instance of WrapMentionsHandler
func NewWrapMentionsHandler(listener MentionListener, messenger Messenger, runner JobRunner, logger *logrus.Logger, options WrapMentionsOptions) (*WrapMentionsHandler, error) {
	if listener == nil || messenger == nil || runner == nil {
		return nil, fmt.Errorf("listener, messenger and runner are required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.Phrases == nil {
		options.Phrases = NewPhrases(uint64(time.Now().UnixNano()))
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &WrapMentionsHandler{
		listener:  listener,
		messenger: messenger,
		runner:    runner,
		logger:    logger,
		options:   options,
	}, nil
}

// Name returns the unique identifier for this action
func (h *WrapMentionsHandler) Name() string {
	return "wrap_mentions_handler"
}

// Execute listens for mentions and runs each wrap on its own goroutine. It
// returns once the listener stops and every started wrap has replied.
func (h *WrapMentionsHandler) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()
	defer cancel()

	h.logger.Info("Starting wrap mention monitoring")

	err := h.listener.Listen(ctx, func(m wrapslack.Mention) {
		h.running.Add(1)
		go func() {
			defer h.running.Done()
			h.HandleMention(ctx, m)
		}()
	})
	h.running.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop implements the Action interface
func (h *WrapMentionsHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
}

// HandleMention runs one mention to completion: acknowledge in thread, run
// the job with loading updates, then reply with the outcome.
func (h *WrapMentionsHandler) HandleMention(ctx context.Context, m wrapslack.Mention) {
	now := h.options.Now().In(h.options.Location)
	year, ok := ParseTrigger(m.Text, now)
	log := h.logger.WithFields(logrus.Fields{
		"channel_id": m.ChannelID,
		"caller_id":  m.UserID,
	})
	if !ok {
		log.Debug("Ignoring mention without a wrap trigger")
		return
	}
	log = log.WithField("year", year)

	// final replies still go out while shutting down
	replyCtx := context.WithoutCancel(ctx)
	threadTS := m.ReplyTS()

	period, err := wrapped.NewPeriod(year, h.options.Location)
	if err != nil {
		log.WithError(err).Info("Rejecting mention with an unsupported year")
		h.reply(replyCtx, log, m.ChannelID, threadTS, fmt.Sprintf(invalidYearMessage, wrapped.MinYear, wrapped.MaxYear))
		return
	}

	ackTS, err := h.messenger.PostThreadReply(ctx, m.ChannelID, threadTS, h.options.Phrases.Acknowledgement())
	if err != nil {
		log.WithError(err).Error("Failed to acknowledge mention")
		return
	}
	log = log.WithField("ack_ts", ackTS)

	name, err := h.messenger.ChannelName(ctx, m.ChannelID)
	if err != nil {
		jobErr := jobs.Classify("", err)
		log.WithError(err).WithField("kind", jobErr.Kind.String()).Error("Failed to resolve channel name")
		h.update(replyCtx, log, m.ChannelID, ackTS, jobErr.UserMessage())
		return
	}

	notifier := jobs.NotifierFunc(func(ctx context.Context, count int) error {
		return h.messenger.UpdateMessage(ctx, m.ChannelID, ackTS, h.options.Phrases.Loading(count))
	})

	result, err := h.runner.Run(ctx, jobs.Request{
		ChannelID:   m.ChannelID,
		ChannelName: name,
		CallerID:    m.UserID,
		Period:      period,
	}, notifier)
	log = log.WithField("job_id", result.JobID)

	var jobErr *jobs.JobError
	switch {
	case errors.As(err, &jobErr):
		h.update(replyCtx, log, m.ChannelID, ackTS, jobErr.UserMessage())
	case err != nil:
		log.WithError(err).Error("Job returned an unclassified error")
		h.update(replyCtx, log, m.ChannelID, ackTS, jobs.Classify(result.JobID, err).UserMessage())
	case result.Status == jobs.StatusBusy:
		h.update(replyCtx, log, m.ChannelID, ackTS, busyMessage)
	default:
		h.update(replyCtx, log, m.ChannelID, ackTS, h.options.Phrases.Finished())
		if err := h.messenger.PostSummary(replyCtx, m.ChannelID, threadTS, year, m.UserID, result.Summary); err != nil {
			log.WithError(err).Error("Failed to post summary")
			return
		}
		log.WithField("status", string(result.Status)).Info("Posted wrap summary")
	}
}

func (h *WrapMentionsHandler) update(ctx context.Context, log *logrus.Entry, channelID, ts, text string) {
	if err := h.messenger.UpdateMessage(ctx, channelID, ts, text); err != nil {
		log.WithError(err).Warn("Failed to update acknowledgement")
	}
}

func (h *WrapMentionsHandler) reply(ctx context.Context, log *logrus.Entry, channelID, threadTS, text string) {
	if _, err := h.messenger.PostThreadReply(ctx, channelID, threadTS, text); err != nil {
		log.WithError(err).Warn("Failed to post reply")
	}
}
