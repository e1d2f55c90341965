package slack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/collector"
	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	slackgo "github.com/slack-go/slack"
)

// SearchQuery builds the search.messages filter for a channel and period.
// Slack's after: and before: take calendar days and exclude the day named, so
// naming the day before Start yields [Start, End).
func SearchQuery(channelID string, period wrapped.Period) string {
	after := period.Start.AddDate(0, 0, -1).Format(time.DateOnly)
	before := period.End.Format(time.DateOnly)
	return fmt.Sprintf("in:<#%s> after:%s before:%s", channelID, after, before)
}

// MessageSource implements wrapped.SourceFactory with a counted-page search source.
func (c *SlackClient) MessageSource(channelID string, period wrapped.Period) collector.Source[wrapped.MessageItem] {
	return &searchSource{client: c, query: SearchQuery(channelID, period)}
}

// ReactionSource implements wrapped.SourceFactory with a cursor-paged history source.
func (c *SlackClient) ReactionSource(channelID string, period wrapped.Period) collector.Source[wrapped.ReactionItem] {
	return &historySource{
		client:    c,
		channelID: channelID,
		oldest:    strconv.FormatInt(period.Start.Unix(), 10),
		latest:    strconv.FormatInt(period.End.Unix(), 10),
	}
}

type searchSource struct {
	client *SlackClient
	query  string
}

func (s *searchSource) Name() string {
	return "search.messages"
}

func (s *searchSource) FetchPage(ctx context.Context, req collector.PageRequest) (collector.Page[wrapped.MessageItem], error) {
	var result *slackgo.SearchMessages
	err := s.client.call(ctx, s.Name(), func() error {
		var err error
		result, err = s.client.user.SearchMessagesContext(ctx, s.query, slackgo.SearchParameters{
			Sort:          "timestamp",
			SortDirection: "asc",
			Count:         s.client.config.SearchPageSize,
			Page:          req.Number,
		})
		return err
	})
	if err != nil {
		return collector.Page[wrapped.MessageItem]{}, err
	}

	items := make([]wrapped.MessageItem, 0, len(result.Matches))
	for _, match := range result.Matches {
		ts, err := ParseTimestamp(match.Timestamp)
		if err != nil {
			return collector.Page[wrapped.MessageItem]{}, fmt.Errorf("search match: %w", err)
		}
		actor := match.User
		if actor == "" {
			actor = match.Username
		}
		items = append(items, wrapped.MessageItem{ActorID: actor, Timestamp: ts})
	}

	return collector.Page[wrapped.MessageItem]{
		Items:  items,
		Paging: collector.CountedPaging{TotalPages: result.Paging.Pages},
	}, nil
}

type historySource struct {
	client    *SlackClient
	channelID string
	oldest    string
	latest    string
}

func (h *historySource) Name() string {
	return "conversations.history"
}

func (h *historySource) FetchPage(ctx context.Context, req collector.PageRequest) (collector.Page[wrapped.ReactionItem], error) {
	var resp *slackgo.GetConversationHistoryResponse
	err := h.client.call(ctx, h.Name(), func() error {
		var err error
		resp, err = h.client.bot.GetConversationHistoryContext(ctx, &slackgo.GetConversationHistoryParameters{
			ChannelID: h.channelID,
			Cursor:    req.Cursor,
			Oldest:    h.oldest,
			Latest:    h.latest,
			Limit:     h.client.config.HistoryPageSize,
			Inclusive: false,
		})
		return err
	})
	if err != nil {
		return collector.Page[wrapped.ReactionItem]{}, err
	}

	items := make([]wrapped.ReactionItem, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		reactions := make([]wrapped.ReactionCount, 0, len(msg.Reactions))
		for _, r := range msg.Reactions {
			reactions = append(reactions, wrapped.ReactionCount{Name: r.Name, Count: r.Count})
		}
		items = append(items, wrapped.ReactionItem{Reactions: reactions})
	}

	next := resp.ResponseMetaData.NextCursor
	if !resp.HasMore {
		next = ""
	}
	return collector.Page[wrapped.ReactionItem]{
		Items:  items,
		Paging: collector.CursorPaging{NextCursor: next},
	}, nil
}

// ParseTimestamp converts a Slack message ts ("1714521600.000100") to a time.
func ParseTimestamp(ts string) (time.Time, error) {
	secs, frac, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid message ts %q: %w", ts, err)
	}
	var micros int64
	if frac != "" {
		micros, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid message ts %q: %w", ts, err)
		}
	}
	return time.Unix(sec, micros*int64(time.Microsecond)), nil
}
