package wrapped

import (
	"sort"
	"time"
)

// MessageItem is one message returned by the search source.
type MessageItem struct {
	ActorID   string
	Timestamp time.Time
}

// ReactionCount is one reaction on a message.
type ReactionCount struct {
	Name  string
	Count int
}

// ReactionItem is one message returned by the history source.
type ReactionItem struct {
	Reactions []ReactionCount
}

// MessageStats accumulates message counts for one collection run.
// Messages without an actor count towards TotalMessages only.
type MessageStats struct {
	TotalMessages    int
	CallerMessages   int
	MessagesByActor  map[string]int
	MessagesByBucket map[int]int

	callerID    string
	location    *time.Location
	actorOrder  []string
	bucketOrder []int
}

// NewMessageStats creates an empty accumulator. Timestamps are bucketed by
// calendar month in loc.
func NewMessageStats(callerID string, loc *time.Location) *MessageStats {
	if loc == nil {
		loc = time.Local
	}
	return &MessageStats{
		MessagesByActor:  make(map[string]int),
		MessagesByBucket: make(map[int]int),
		callerID:         callerID,
		location:         loc,
	}
}

// Add applies one message.
func (s *MessageStats) Add(item MessageItem) {
	s.TotalMessages++
	if item.ActorID != "" {
		if item.ActorID == s.callerID {
			s.CallerMessages++
		}
		if _, seen := s.MessagesByActor[item.ActorID]; !seen {
			s.actorOrder = append(s.actorOrder, item.ActorID)
		}
		s.MessagesByActor[item.ActorID]++
	}

	bucket := int(item.Timestamp.In(s.location).Month()) - 1
	if _, seen := s.MessagesByBucket[bucket]; !seen {
		s.bucketOrder = append(s.bucketOrder, bucket)
	}
	s.MessagesByBucket[bucket]++
}

// TopActors ranks actors by message count, ties in first-seen order.
func (s *MessageStats) TopActors(n int) []Ranked {
	return rank(s.MessagesByActor, s.actorOrder, n)
}

// PeakBucket returns the month bucket with the most messages, ties broken by
// first-seen bucket. It returns false when nothing was recorded.
func (s *MessageStats) PeakBucket() (int, bool) {
	best, bestCount := 0, -1
	for _, bucket := range s.bucketOrder {
		if c := s.MessagesByBucket[bucket]; c > bestCount {
			best, bestCount = bucket, c
		}
	}
	return best, bestCount >= 0
}

// ReduceMessage is the collector reducer for message stats.
func ReduceMessage(acc *MessageStats, item MessageItem) {
	acc.Add(item)
}

// ReactionStats accumulates reaction usage for one collection run.
type ReactionStats struct {
	CountsByReactionName map[string]int

	order []string
}

// NewReactionStats creates an empty accumulator.
func NewReactionStats() *ReactionStats {
	return &ReactionStats{CountsByReactionName: make(map[string]int)}
}

// Add applies the reactions of one message. Non-positive counts are ignored so
// totals never decrease.
func (s *ReactionStats) Add(item ReactionItem) {
	for _, r := range item.Reactions {
		if r.Name == "" || r.Count <= 0 {
			continue
		}
		if _, seen := s.CountsByReactionName[r.Name]; !seen {
			s.order = append(s.order, r.Name)
		}
		s.CountsByReactionName[r.Name] += r.Count
	}
}

// TopReactions ranks reaction names by count, ties in first-seen order.
func (s *ReactionStats) TopReactions(n int) []Ranked {
	return rank(s.CountsByReactionName, s.order, n)
}

// ReduceReaction is the collector reducer for reaction stats.
func ReduceReaction(acc *ReactionStats, item ReactionItem) {
	acc.Add(item)
}

// Ranked is a key with its count.
type Ranked struct {
	Key   string
	Count int
}

func rank(counts map[string]int, order []string, n int) []Ranked {
	ranked := make([]Ranked, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, Ranked{Key: key, Count: counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
