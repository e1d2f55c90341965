package slack

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Mention is an app_mention event reduced to what the wrap trigger needs.
type Mention struct {
	ChannelID string
	UserID    string
	Text      string
	// TS is the mention's own ts; replies thread under ThreadTS when set, else TS
	TS       string
	ThreadTS string
}

// ReplyTS is the ts the bot's replies should thread under.
func (m Mention) ReplyTS() string {
	if m.ThreadTS != "" {
		return m.ThreadTS
	}
	return m.TS
}

// MentionListener receives app mentions over socket mode.
type MentionListener struct {
	socket *socketmode.Client
	logger *logrus.Logger
}

func (c *SlackClient) NewMentionListener() *MentionListener {
	return &MentionListener{
		socket: socketmode.New(c.bot),
		logger: c.logger,
	}
}

// Listen connects and calls handle for every app mention until ctx ends or
// the connection fails permanently. handle runs on the event loop and must not
// block.
func (l *MentionListener) Listen(ctx context.Context, handle func(Mention)) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- l.socket.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			return err
		case evt, ok := <-l.socket.Events:
			if !ok {
				return nil
			}
			l.dispatch(evt, handle)
		}
	}
}

func (l *MentionListener) dispatch(evt socketmode.Event, handle func(Mention)) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.logger.Debug("Connecting to Slack socket mode")
	case socketmode.EventTypeConnected:
		l.logger.Info("Connected to Slack socket mode")
	case socketmode.EventTypeConnectionError:
		l.logger.WithField("data", evt.Data).Warn("Socket mode connection error, retrying")
	case socketmode.EventTypeEventsAPI:
		if evt.Request != nil {
			l.socket.Ack(*evt.Request)
		}
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if mention, ok := ParseMention(apiEvent); ok {
			handle(mention)
		}
	}
}

// ParseMention extracts an app mention from an Events API callback.
func ParseMention(event slackevents.EventsAPIEvent) (Mention, bool) {
	if event.Type != slackevents.CallbackEvent {
		return Mention{}, false
	}
	ev, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok || ev.Channel == "" || ev.User == "" {
		return Mention{}, false
	}
	return Mention{
		ChannelID: ev.Channel,
		UserID:    ev.User,
		Text:      ev.Text,
		TS:        ev.TimeStamp,
		ThreadTS:  ev.ThreadTimeStamp,
	}, true
}
