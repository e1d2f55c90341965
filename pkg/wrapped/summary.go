package wrapped

import (
	"errors"
	"fmt"
)

// TopN is the length limit of every ranking in a summary.
const TopN = 3

// monthNames maps a month bucket (0-11) to its label.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthLabel returns the label for a zero-based month bucket.
func MonthLabel(bucket int) string {
	if bucket < 0 || bucket >= len(monthNames) {
		return ""
	}
	return monthNames[bucket]
}

// TopActor is one entry of the most active participants ranking.
type TopActor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
	Count       int    `json:"count"`
}

// TopReaction is one entry of the most used reactions ranking.
type TopReaction struct {
	Name    string `json:"name"`
	IconRef string `json:"iconRef"`
}

// WrapSummary is the merged result of one collection run. It is built once
// and never modified afterwards.
type WrapSummary struct {
	ChannelName    string        `json:"channelName"`
	TotalMessages  int           `json:"totalMessages"`
	CallerMessages int           `json:"callerMessages"`
	CallerPercent  int           `json:"callerPercent"`
	TopActors      []TopActor    `json:"topActors"`
	TopReactions   []TopReaction `json:"topReactions"`
	PeakBucket     *string       `json:"peakBucket"`
}

// Validate checks the invariants a well-formed summary satisfies.
func (s *WrapSummary) Validate() error {
	if s == nil {
		return errors.New("summary is nil")
	}
	if s.TotalMessages < 0 || s.CallerMessages < 0 {
		return errors.New("negative message counts")
	}
	if s.CallerMessages > s.TotalMessages {
		return fmt.Errorf("caller messages %d exceed total %d", s.CallerMessages, s.TotalMessages)
	}
	if s.CallerPercent < 0 || s.CallerPercent > 100 {
		return fmt.Errorf("caller percent %d out of range", s.CallerPercent)
	}
	if len(s.TopActors) > TopN || len(s.TopReactions) > TopN {
		return errors.New("ranking longer than limit")
	}
	for i := 1; i < len(s.TopActors); i++ {
		if s.TopActors[i].Count > s.TopActors[i-1].Count {
			return errors.New("top actors not sorted by count")
		}
	}
	if s.TotalMessages == 0 && s.PeakBucket != nil {
		return errors.New("peak bucket without messages")
	}
	return nil
}

// CallerPercent rounds 100*caller/total to an integer, defined as 0 when total is 0.
func CallerPercent(caller, total int) int {
	if total <= 0 {
		return 0
	}
	// Integer half-up rounding, equal to math.Round for non-negative inputs.
	percent := (200*caller + total) / (2 * total)
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}
