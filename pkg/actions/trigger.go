package actions

import (
	"regexp"
	"strconv"
	"time"
)

var (
	triggerPattern = regexp.MustCompile(`(?i)\bwrap\b|\bwrapped\b`)
	yearPattern    = regexp.MustCompile(`\b(\d{4})\b`)
	// user, channel and link tokens such as <@U024BE7LH> carry digits
	tokenPattern = regexp.MustCompile(`<[^>]*>`)
)

// ParseTrigger reports whether a mention asks for a wrap and, if so, for
// which year. Without an explicit four digit year it picks the year of now.
func ParseTrigger(text string, now time.Time) (int, bool) {
	text = tokenPattern.ReplaceAllString(text, " ")
	if !triggerPattern.MatchString(text) {
		return 0, false
	}
	if match := yearPattern.FindStringSubmatch(text); match != nil {
		year, err := strconv.Atoi(match[1])
		if err == nil {
			return year, true
		}
	}
	return now.Year(), true
}
