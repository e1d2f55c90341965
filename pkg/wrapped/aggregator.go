package wrapped

import (
	"context"
	"fmt"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/backoff"
	"github.com/channelwrapped/wrapbot/pkg/collector"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSearchPageDelay is the pause between search pages
	DefaultSearchPageDelay = 600 * time.Millisecond
	// DefaultHistoryPageDelay is the pause between history pages
	DefaultHistoryPageDelay = 300 * time.Millisecond
	// DefaultProgressEvery is the number of messages between progress reports
	DefaultProgressEvery = 100
)

// SourceFactory builds the two sources for one channel and period.
type SourceFactory interface {
	MessageSource(channelID string, period Period) collector.Source[MessageItem]
	ReactionSource(channelID string, period Period) collector.Source[ReactionItem]
}

// Identity is the display information of an actor.
type Identity struct {
	DisplayName string
	AvatarRef   string
}

// IdentityLookup resolves an actor id to its display information.
type IdentityLookup interface {
	LookupActor(ctx context.Context, actorID string) (Identity, error)
}

// IconResolver maps a reaction name to an icon URI. It must be pure.
type IconResolver interface {
	ResolveIcon(name string) string
}

// ProgressReporter receives the running message count during collection.
type ProgressReporter func(count int)

// AggregatorConfig holds the collaborators and tuning of an Aggregator.
type AggregatorConfig struct {
	Sources    SourceFactory
	Identities IdentityLookup
	Icons      IconResolver
	Executor   *backoff.Executor

	SearchPageDelay  time.Duration
	HistoryPageDelay time.Duration
	ProgressEvery    int
	Location         *time.Location

	Logger *logrus.Logger
}

// Aggregator runs the message and reaction collections for a channel
// concurrently and merges them into a WrapSummary.
type Aggregator struct {
	config AggregatorConfig
	logger *logrus.Logger
}

// Request describes one aggregation.
type Request struct {
	ChannelID   string
	ChannelName string
	CallerID    string
	Period      Period
}

// NewAggregator validates config and fills defaults.
func NewAggregator(config AggregatorConfig) (*Aggregator, error) {
	if config.Sources == nil {
		return nil, fmt.Errorf("sources are required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Executor == nil {
		config.Executor = backoff.NewExecutor(backoff.DefaultConfig(), config.Logger)
	}
	if config.ProgressEvery <= 0 {
		config.ProgressEvery = DefaultProgressEvery
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Aggregator{config: config, logger: config.Logger}, nil
}

// Aggregate collects both sources and returns the merged summary. If either
// collection fails the whole aggregation fails and the sibling's results are
// discarded.
func (a *Aggregator) Aggregate(ctx context.Context, req Request, progress ProgressReporter) (*WrapSummary, error) {
	log := a.logger.WithFields(logrus.Fields{
		"channel_id": req.ChannelID,
		"caller_id":  req.CallerID,
		"year":       req.Period.Year(),
	})

	var (
		messages  *MessageStats
		reactions *ReactionStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		src := a.config.Sources.MessageSource(req.ChannelID, req.Period)
		reduce := a.progressReducer(log, progress)
		stats, err := collector.Collect(gctx, src, NewMessageStats(req.CallerID, a.config.Location), reduce, collector.Options{
			PageDelay: a.config.SearchPageDelay,
			Executor:  a.config.Executor,
			Logger:    a.logger,
		})
		if err != nil {
			return fmt.Errorf("message stats: %w", err)
		}
		messages = stats
		return nil
	})

	g.Go(func() error {
		src := a.config.Sources.ReactionSource(req.ChannelID, req.Period)
		stats, err := collector.Collect(gctx, src, NewReactionStats(), ReduceReaction, collector.Options{
			PageDelay: a.config.HistoryPageDelay,
			Executor:  a.config.Executor,
			Logger:    a.logger,
		})
		if err != nil {
			return fmt.Errorf("reaction stats: %w", err)
		}
		reactions = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Collection failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"total_messages": messages.TotalMessages,
		"reaction_names": len(reactions.CountsByReactionName),
	}).Info("Collections complete, merging")

	return a.merge(ctx, req, messages, reactions), nil
}

// progressReducer wraps ReduceMessage so progress is reported every
// ProgressEvery messages. A panicking reporter is logged and ignored.
func (a *Aggregator) progressReducer(log *logrus.Entry, progress ProgressReporter) collector.Reducer[*MessageStats, MessageItem] {
	every := a.config.ProgressEvery
	return func(acc *MessageStats, item MessageItem) {
		ReduceMessage(acc, item)
		if progress == nil || acc.TotalMessages%every != 0 {
			return
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Progress reporter panicked")
				}
			}()
			progress(acc.TotalMessages)
		}()
	}
}

func (a *Aggregator) merge(ctx context.Context, req Request, messages *MessageStats, reactions *ReactionStats) *WrapSummary {
	summary := &WrapSummary{
		ChannelName:    req.ChannelName,
		TotalMessages:  messages.TotalMessages,
		CallerMessages: messages.CallerMessages,
		CallerPercent:  CallerPercent(messages.CallerMessages, messages.TotalMessages),
		TopActors:      a.resolveActors(ctx, messages.TopActors(TopN)),
		TopReactions:   make([]TopReaction, 0, TopN),
	}

	for _, r := range reactions.TopReactions(TopN) {
		icon := ""
		if a.config.Icons != nil {
			icon = a.config.Icons.ResolveIcon(r.Key)
		}
		summary.TopReactions = append(summary.TopReactions, TopReaction{Name: r.Key, IconRef: icon})
	}

	if bucket, ok := messages.PeakBucket(); ok {
		label := MonthLabel(bucket)
		summary.PeakBucket = &label
	}
	return summary
}

// resolveActors looks up every ranked actor concurrently. A failed lookup
// falls back to the raw id with no avatar.
func (a *Aggregator) resolveActors(ctx context.Context, ranked []Ranked) []TopActor {
	actors := make([]TopActor, len(ranked))
	var g errgroup.Group
	g.SetLimit(TopN)
	for i, r := range ranked {
		actors[i] = TopActor{ID: r.Key, DisplayName: r.Key, Count: r.Count}
		if a.config.Identities == nil {
			continue
		}
		g.Go(func() error {
			identity, err := a.config.Identities.LookupActor(ctx, r.Key)
			if err != nil {
				a.logger.WithError(err).WithField("actor_id", r.Key).Warn("Identity lookup failed, using id")
				return nil
			}
			if identity.DisplayName != "" {
				actors[i].DisplayName = identity.DisplayName
			}
			actors[i].AvatarRef = identity.AvatarRef
			return nil
		})
	}
	_ = g.Wait()
	return actors
}
