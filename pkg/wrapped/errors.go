package wrapped

import "errors"

// ErrChannelNotAccessible is returned by sources when the bot cannot read the
// target channel. It is surfaced to callers distinctly from other failures.
var ErrChannelNotAccessible = errors.New("channel not accessible")
