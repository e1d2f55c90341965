package jobs_test

import (
	"os"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/jobs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CollectionConfig", func() {
	keys := []string{
		"WRAP_SEARCH_PAGE_DELAY_MS", "WRAP_HISTORY_PAGE_DELAY_MS", "WRAP_RETRY_BASE_MS",
		"WRAP_RETRY_CAP_MS", "WRAP_RETRY_ATTEMPTS", "WRAP_JOB_TIMEOUT_SECONDS",
		"WRAP_PROGRESS_EVERY", "WRAP_TIMEZONE",
	}

	BeforeEach(func() {
		for _, key := range keys {
			if value, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, value)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("uses the defaults when nothing is set", func() {
		config, err := jobs.NewCollectionConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(config.SearchPageDelay).To(Equal(600 * time.Millisecond))
		Expect(config.HistoryPageDelay).To(Equal(300 * time.Millisecond))
		Expect(config.Retry.MaxAttempts).To(Equal(3))
		Expect(config.Retry.BaseDelay).To(Equal(time.Second))
		Expect(config.Retry.MaxDelay).To(Equal(10 * time.Second))
		Expect(config.JobTimeout).To(BeZero())
		Expect(config.ProgressEvery).To(Equal(100))
		Expect(config.Location).To(Equal(time.Local))
	})

	It("reads overrides from the environment", func() {
		os.Setenv("WRAP_SEARCH_PAGE_DELAY_MS", "50")
		os.Setenv("WRAP_RETRY_ATTEMPTS", "5")
		os.Setenv("WRAP_JOB_TIMEOUT_SECONDS", "120")
		os.Setenv("WRAP_TIMEZONE", "UTC")

		config, err := jobs.NewCollectionConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(config.SearchPageDelay).To(Equal(50 * time.Millisecond))
		Expect(config.Retry.MaxAttempts).To(Equal(5))
		Expect(config.JobTimeout).To(Equal(2 * time.Minute))
		Expect(config.Location.String()).To(Equal("UTC"))
	})

	DescribeTable("rejects unusable values",
		func(key, value string) {
			os.Setenv(key, value)
			_, err := jobs.NewCollectionConfig()
			Expect(err).To(HaveOccurred())
		},
		Entry("non-numeric delay", "WRAP_SEARCH_PAGE_DELAY_MS", "soon"),
		Entry("zero attempts", "WRAP_RETRY_ATTEMPTS", "0"),
		Entry("cap below base", "WRAP_RETRY_CAP_MS", "10"),
		Entry("negative timeout", "WRAP_JOB_TIMEOUT_SECONDS", "-1"),
		Entry("unknown timezone", "WRAP_TIMEZONE", "Mars/Olympus"),
	)
})
