package slack

import (
	"fmt"
	"strings"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	slackgo "github.com/slack-go/slack"
)

// SummaryText is the plain fallback shown in notifications and by clients
// that cannot render blocks.
func SummaryText(summary *wrapped.WrapSummary, year int) string {
	return fmt.Sprintf("#%s wrapped %d: %d messages", summary.ChannelName, year, summary.TotalMessages)
}

// SummaryBlocks renders a summary as Block Kit for the thread reply.
func SummaryBlocks(summary *wrapped.WrapSummary, year int, callerID string) []slackgo.Block {
	blocks := []slackgo.Block{
		slackgo.NewHeaderBlock(plain(fmt.Sprintf("#%s wrapped %d", summary.ChannelName, year))),
	}

	if summary.TotalMessages == 0 {
		return append(blocks, slackgo.NewSectionBlock(markdown("No messages found in this period."), nil, nil))
	}

	overview := fmt.Sprintf("*%d* messages this year. <@%s> sent *%d* of them (*%d%%*).",
		summary.TotalMessages, callerID, summary.CallerMessages, summary.CallerPercent)
	if summary.PeakBucket != nil {
		overview += fmt.Sprintf("\nBusiest month: *%s*", *summary.PeakBucket)
	}
	blocks = append(blocks, slackgo.NewSectionBlock(markdown(overview), nil, nil), slackgo.NewDividerBlock())

	if len(summary.TopActors) > 0 {
		blocks = append(blocks, slackgo.NewSectionBlock(markdown("*Top chatters*"), nil, nil))
		for i, actor := range summary.TopActors {
			text := markdown(fmt.Sprintf("%d. *%s*  %d messages", i+1, actor.DisplayName, actor.Count))
			var accessory *slackgo.Accessory
			if actor.AvatarRef != "" {
				accessory = slackgo.NewAccessory(slackgo.NewImageBlockElement(actor.AvatarRef, actor.DisplayName))
			}
			blocks = append(blocks, slackgo.NewSectionBlock(text, nil, accessory))
		}
	}

	if len(summary.TopReactions) > 0 {
		elements := []slackgo.MixedElement{markdown("*Top reactions*")}
		names := make([]string, 0, len(summary.TopReactions))
		for _, reaction := range summary.TopReactions {
			if reaction.IconRef != "" {
				elements = append(elements, slackgo.NewImageBlockElement(reaction.IconRef, reaction.Name))
			}
			names = append(names, ":"+reaction.Name+":")
		}
		elements = append(elements, markdown(strings.Join(names, "  ")))
		blocks = append(blocks, slackgo.NewContextBlock("", elements...))
	}

	return blocks
}

func plain(text string) *slackgo.TextBlockObject {
	return slackgo.NewTextBlockObject(slackgo.PlainTextType, text, true, false)
}

func markdown(text string) *slackgo.TextBlockObject {
	return slackgo.NewTextBlockObject(slackgo.MarkdownType, text, false, false)
}
