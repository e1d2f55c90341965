package slack

import (
	"context"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
	slackgo "github.com/slack-go/slack"
)

// LookupActor implements wrapped.IdentityLookup via users.info.
func (c *SlackClient) LookupActor(ctx context.Context, actorID string) (wrapped.Identity, error) {
	var user *slackgo.User
	err := c.call(ctx, "users.info", func() error {
		var err error
		user, err = c.bot.GetUserInfoContext(ctx, actorID)
		return err
	})
	if err != nil {
		return wrapped.Identity{}, err
	}

	name := user.Profile.DisplayName
	if name == "" {
		name = user.Profile.RealName
	}
	if name == "" {
		name = user.Name
	}

	c.logger.WithFields(logrus.Fields{
		"actor_id":     actorID,
		"display_name": name,
	}).Debug("Resolved actor identity")

	return wrapped.Identity{DisplayName: name, AvatarRef: user.Profile.Image192}, nil
}

// ChannelName resolves a channel id via conversations.info. An unreadable
// channel maps to wrapped.ErrChannelNotAccessible.
func (c *SlackClient) ChannelName(ctx context.Context, channelID string) (string, error) {
	var channel *slackgo.Channel
	err := c.call(ctx, "conversations.info", func() error {
		var err error
		channel, err = c.bot.GetConversationInfoContext(ctx, &slackgo.GetConversationInfoInput{ChannelID: channelID})
		return err
	})
	if err != nil {
		return "", err
	}
	return channel.Name, nil
}
