package db_test

import (
	"os"
	"path/filepath"

	"github.com/channelwrapped/wrapbot/pkg/db"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	BeforeEach(func() {
		for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_MIGRATIONS_DIR"} {
			if value, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, value)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("defaults the migrations dir to the project root", func() {
		os.Setenv("DB_USER", "wrap")
		os.Setenv("DB_NAME", "wrapped")
		config, err := db.NewConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(config.MigrationsDir)).To(Equal("migrations"))
		_, err = os.Stat(filepath.Join(filepath.Dir(config.MigrationsDir), "go.mod"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a user and a database name", func() {
		os.Setenv("DB_USER", "wrap")
		_, err := db.NewConfig()
		Expect(err).To(MatchError(ContainSubstring("DB_NAME")))
	})

	It("escapes credentials in the migration URL", func() {
		config := &db.Config{Host: "db", Port: "5432", User: "wrap", Password: "p@ss/word", Name: "wrapped", SSLMode: "disable"}
		Expect(config.URL()).To(Equal("postgres://wrap:p%40ss%2Fword@db:5432/wrapped?sslmode=disable"))
		Expect(config.DSN()).To(Equal("host=db user=wrap password=p@ss/word dbname=wrapped port=5432 sslmode=disable"))
	})
})
