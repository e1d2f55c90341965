// Package logging builds the process logger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger configured from LOG_LEVEL and LOG_FORMAT.
// LOG_FORMAT=json selects logrus.JSONFormatter, anything else the coloured
// formatter. An invalid LOG_LEVEL falls back to info with a warning.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(NewColoredJSONFormatter())
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		log.SetLevel(logrus.InfoLevel)
		return log
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithFields(logrus.Fields{
			"attempted_level": logLevel,
			"default_level":   "INFO",
		}).Warn("Invalid log level specified, defaulting to INFO")
		return log
	}
	log.SetLevel(level)
	return log
}
