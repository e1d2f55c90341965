package slack

import (
	"context"
	"fmt"
	"strings"
)

const (
	emojiCDN      = "https://cdn.jsdelivr.net/gh/twitter/twemoji@14.0.2/assets/72x72/%s.png"
	aliasPrefix   = "alias:"
	maxAliasDepth = 5
)

// standardEmoji maps common Slack shortcodes to twemoji code points.
var standardEmoji = map[string]string{
	"+1":                     "1f44d",
	"thumbsup":               "1f44d",
	"-1":                     "1f44e",
	"thumbsdown":             "1f44e",
	"heart":                  "2764",
	"joy":                    "1f602",
	"laughing":               "1f606",
	"smile":                  "1f604",
	"slightly_smiling_face":  "1f642",
	"grinning":               "1f600",
	"rofl":                   "1f923",
	"sob":                    "1f62d",
	"cry":                    "1f622",
	"thinking_face":          "1f914",
	"eyes":                   "1f440",
	"fire":                   "1f525",
	"tada":                   "1f389",
	"clap":                   "1f44f",
	"pray":                   "1f64f",
	"raised_hands":           "1f64c",
	"muscle":                 "1f4aa",
	"wave":                   "1f44b",
	"ok_hand":                "1f44c",
	"100":                    "1f4af",
	"rocket":                 "1f680",
	"star":                   "2b50",
	"sparkles":               "2728",
	"white_check_mark":       "2705",
	"heavy_check_mark":       "2714",
	"x":                      "274c",
	"warning":                "26a0",
	"skull":                  "1f480",
	"sweat_smile":            "1f605",
	"heart_eyes":             "1f60d",
	"star-struck":            "1f929",
	"partying_face":          "1f973",
	"exploding_head":         "1f92f",
	"upside_down_face":       "1f643",
	"wink":                   "1f609",
	"sunglasses":             "1f60e",
	"pleading_face":          "1f97a",
	"melting_face":           "1fae0",
	"saluting_face":          "1fae1",
	"face_with_rolling_eyes": "1f644",
	"handshake":              "1f91d",
	"point_up":               "261d",
	"see_no_evil":            "1f648",
	"coffee":                 "2615",
	"pizza":                  "1f355",
	"cake":                   "1f370",
	"trophy":                 "1f3c6",
	"bulb":                   "1f4a1",
	"memo":                   "1f4dd",
	"zap":                    "26a1",
	"boom":                   "1f4a5",
	"heavy_plus_sign":        "2795",
	"question":               "2753",
	"exclamation":            "2757",
	"purple_heart":           "1f49c",
	"blue_heart":             "1f499",
	"green_heart":            "1f49a",
	"yellow_heart":           "1f49b",
	"orange_heart":           "1f9e1",
	"black_heart":            "1f5a4",
	"white_heart":            "1f90d",
	"broken_heart":           "1f494",
	"hugging_face":           "1f917",
	"money_mouth_face":       "1f911",
	"nerd_face":              "1f913",
	"cool":                   "1f192",
	"dog":                    "1f436",
	"cat":                    "1f431",
	"goat":                   "1f410",
	"gift":                   "1f381",
}

// EmojiResolver implements wrapped.IconResolver. Workspace emoji win over
// standard ones with the same name.
type EmojiResolver struct {
	custom map[string]string
}

// NewEmojiResolver builds a resolver over an emoji.list result.
func NewEmojiResolver(custom map[string]string) *EmojiResolver {
	if custom == nil {
		custom = map[string]string{}
	}
	return &EmojiResolver{custom: custom}
}

// LoadEmoji fetches the workspace's custom emoji. A failure is logged and
// yields a resolver over the standard table only.
func (c *SlackClient) LoadEmoji(ctx context.Context) *EmojiResolver {
	var custom map[string]string
	err := c.call(ctx, "emoji.list", func() error {
		var err error
		custom, err = c.bot.GetEmojiContext(ctx)
		return err
	})
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load custom emoji, using standard icons only")
		return NewEmojiResolver(nil)
	}
	c.logger.WithField("custom_emoji", len(custom)).Info("Loaded custom emoji")
	return NewEmojiResolver(custom)
}

// ResolveIcon returns an image URL for a reaction name, or "" if none is known.
func (r *EmojiResolver) ResolveIcon(name string) string {
	// "+1::skin-tone-3" renders with the base emoji
	name, _, _ = strings.Cut(name, "::")

	for depth := 0; depth < maxAliasDepth; depth++ {
		target, ok := r.custom[name]
		if !ok {
			break
		}
		alias, isAlias := strings.CutPrefix(target, aliasPrefix)
		if !isAlias {
			return target
		}
		name = alias
	}

	if code, ok := standardEmoji[name]; ok {
		return fmt.Sprintf(emojiCDN, code)
	}
	return ""
}
