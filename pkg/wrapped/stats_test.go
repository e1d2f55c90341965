package wrapped_test

import (
	"time"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func at(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 12, 0, 0, 0, time.UTC)
}

var _ = Describe("MessageStats", func() {
	var stats *wrapped.MessageStats

	BeforeEach(func() {
		stats = wrapped.NewMessageStats("U_CALLER", time.UTC)
	})

	It("counts totals, caller messages, actors and month buckets", func() {
		stats.Add(wrapped.MessageItem{ActorID: "U_CALLER", Timestamp: at(time.March, 1)})
		stats.Add(wrapped.MessageItem{ActorID: "U_OTHER", Timestamp: at(time.March, 2)})
		stats.Add(wrapped.MessageItem{ActorID: "U_OTHER", Timestamp: at(time.July, 2)})

		Expect(stats.TotalMessages).To(Equal(3))
		Expect(stats.CallerMessages).To(Equal(1))
		Expect(stats.MessagesByActor).To(Equal(map[string]int{"U_CALLER": 1, "U_OTHER": 2}))
		Expect(stats.MessagesByBucket).To(Equal(map[int]int{2: 2, 6: 1}))
	})

	It("counts actorless messages in the total only", func() {
		stats.Add(wrapped.MessageItem{Timestamp: at(time.May, 1)})
		stats.Add(wrapped.MessageItem{ActorID: "U1", Timestamp: at(time.May, 1)})

		Expect(stats.TotalMessages).To(Equal(2))
		Expect(stats.MessagesByActor).To(HaveLen(1))
	})

	It("buckets by month in the configured location", func() {
		tokyo := time.FixedZone("JST", 9*60*60)
		local := wrapped.NewMessageStats("", tokyo)
		// 20:00 UTC on Jan 31 is already Feb 1 in Tokyo.
		local.Add(wrapped.MessageItem{ActorID: "U1", Timestamp: time.Date(2024, time.January, 31, 20, 0, 0, 0, time.UTC)})
		bucket, ok := local.PeakBucket()
		Expect(ok).To(BeTrue())
		Expect(bucket).To(Equal(1))
	})

	It("ranks actors descending with ties in first-seen order", func() {
		for _, id := range []string{"B", "A", "C", "A", "D", "B", "D"} {
			stats.Add(wrapped.MessageItem{ActorID: id, Timestamp: at(time.June, 1)})
		}
		Expect(stats.TopActors(3)).To(Equal([]wrapped.Ranked{
			{Key: "B", Count: 2},
			{Key: "A", Count: 2},
			{Key: "D", Count: 2},
		}))
	})

	It("picks the first-seen bucket on a peak tie", func() {
		stats.Add(wrapped.MessageItem{ActorID: "U1", Timestamp: at(time.October, 1)})
		stats.Add(wrapped.MessageItem{ActorID: "U1", Timestamp: at(time.February, 1)})
		bucket, ok := stats.PeakBucket()
		Expect(ok).To(BeTrue())
		Expect(wrapped.MonthLabel(bucket)).To(Equal("October"))
	})

	It("has no peak bucket when empty", func() {
		_, ok := stats.PeakBucket()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ReactionStats", func() {
	It("sums counts across messages and never decreases", func() {
		stats := wrapped.NewReactionStats()
		stats.Add(wrapped.ReactionItem{Reactions: []wrapped.ReactionCount{{Name: "tada", Count: 2}, {Name: "eyes", Count: 1}}})
		stats.Add(wrapped.ReactionItem{Reactions: []wrapped.ReactionCount{{Name: "tada", Count: -4}, {Name: "fire", Count: 5}}})

		Expect(stats.CountsByReactionName).To(Equal(map[string]int{"tada": 2, "eyes": 1, "fire": 5}))
		Expect(stats.TopReactions(2)).To(Equal([]wrapped.Ranked{{Key: "fire", Count: 5}, {Key: "tada", Count: 2}}))
	})
})

var _ = Describe("CallerPercent", func() {
	DescribeTable("rounds to an integer within [0, 100]",
		func(caller, total, expected int) {
			Expect(wrapped.CallerPercent(caller, total)).To(Equal(expected))
		},
		Entry("no messages", 0, 0, 0),
		Entry("exact", 12, 100, 12),
		Entry("rounds half up", 1, 8, 13),
		Entry("rounds down", 1, 3, 33),
		Entry("all messages", 7, 7, 100),
	)
})

var _ = Describe("Period", func() {
	It("spans the calendar year half-open", func() {
		period, err := wrapped.NewPeriod(2024, time.UTC)
		Expect(err).NotTo(HaveOccurred())
		Expect(period.Start).To(Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
		Expect(period.End).To(Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
		Expect(period.Contains(period.Start)).To(BeTrue())
		Expect(period.Contains(period.End)).To(BeFalse())
		Expect(period.Year()).To(Equal(2024))
	})

	It("rejects years outside the supported range", func() {
		_, err := wrapped.NewPeriod(1999, time.UTC)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("WrapSummary", func() {
	It("rejects summaries that break their invariants", func() {
		Expect((&wrapped.WrapSummary{TotalMessages: 1, CallerMessages: 2}).Validate()).To(HaveOccurred())
		Expect((&wrapped.WrapSummary{TotalMessages: 10, CallerPercent: 120}).Validate()).To(HaveOccurred())
		Expect((&wrapped.WrapSummary{TopActors: []wrapped.TopActor{{Count: 1}, {Count: 2}}, TotalMessages: 3}).Validate()).To(HaveOccurred())
		Expect((&wrapped.WrapSummary{TotalMessages: 3, CallerMessages: 1, CallerPercent: 33}).Validate()).To(Succeed())
	})
})
