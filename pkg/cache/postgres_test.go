package cache_test

import (
	"context"
	"io"
	"os"

	"github.com/channelwrapped/wrapbot/pkg/cache"
	"github.com/channelwrapped/wrapbot/pkg/db"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("PostgresStore", func() {
	var (
		ctx   context.Context
		store *cache.PostgresStore
		c     *cache.Cache
	)

	BeforeEach(func() {
		// Skip if not running integration tests
		if os.Getenv("INTEGRATION_TESTS") != "true" {
			Skip("Skipping integration test")
		}

		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ctx = context.Background()

		config, err := db.NewConfig()
		Expect(err).NotTo(HaveOccurred())
		conn, err := db.SetupDatabase(logger, config)
		Expect(err).NotTo(HaveOccurred())

		store = cache.NewPostgresStore(conn)
		c = cache.New(store, logger)
		DeferCleanup(func() {
			_ = store.Delete(ctx, cache.Key{ChannelID: "C_IT", Year: 2024})
		})
	})

	It("upserts and reads back a summary", func() {
		c.Put(ctx, "C_IT", 2024, sampleSummary())
		updated := sampleSummary()
		updated.TotalMessages = 200
		updated.CallerPercent = 6
		c.Put(ctx, "C_IT", 2024, updated)

		summary, ok := c.Get(ctx, "C_IT", 2024)
		Expect(ok).To(BeTrue())
		Expect(summary.TotalMessages).To(Equal(200))
	})

	It("misses on an unknown key", func() {
		_, ok := c.Get(ctx, "C_IT", 1999)
		Expect(ok).To(BeFalse())
	})
})
