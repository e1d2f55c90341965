package slack

import (
	"context"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
	slackgo "github.com/slack-go/slack"
)

// PostThreadReply posts text in the thread of threadTS and returns the new
// message's ts.
func (c *SlackClient) PostThreadReply(ctx context.Context, channelID, threadTS, text string) (string, error) {
	var ts string
	err := c.call(ctx, "chat.postMessage", func() error {
		var err error
		_, ts, err = c.bot.PostMessageContext(ctx, channelID,
			slackgo.MsgOptionText(text, false),
			slackgo.MsgOptionTS(threadTS),
		)
		return err
	})
	if err != nil {
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"channel_id": channelID,
		"thread_ts":  threadTS,
		"ts":         ts,
	}).Debug("Posted thread reply")
	return ts, nil
}

// UpdateMessage replaces the text of a message the bot posted.
func (c *SlackClient) UpdateMessage(ctx context.Context, channelID, ts, text string) error {
	return c.call(ctx, "chat.update", func() error {
		_, _, _, err := c.bot.UpdateMessageContext(ctx, channelID, ts, slackgo.MsgOptionText(text, false))
		return err
	})
}

// PostSummary posts the rendered summary in the thread of threadTS.
func (c *SlackClient) PostSummary(ctx context.Context, channelID, threadTS string, year int, callerID string, summary *wrapped.WrapSummary) error {
	return c.call(ctx, "chat.postMessage", func() error {
		_, _, err := c.bot.PostMessageContext(ctx, channelID,
			slackgo.MsgOptionText(SummaryText(summary, year), false),
			slackgo.MsgOptionBlocks(SummaryBlocks(summary, year, callerID)...),
			slackgo.MsgOptionTS(threadTS),
		)
		return err
	})
}
