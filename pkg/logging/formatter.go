package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// priorityFields are printed first, in this order, and highlighted.
var priorityFields = []string{"job_id", "channel_id", "caller_id", "year", "source", "page", "error"}

var fieldRank = func() map[string]int {
	rank := make(map[string]int, len(priorityFields))
	for i, k := range priorityFields {
		rank[k] = i + 1
	}
	return rank
}()

// ColoredJSONFormatter prints one line per entry: time, level, message, then
// key=value pairs with job identifiers first.
type ColoredJSONFormatter struct {
	TimestampFormat string
	// SortingFunc orders the field keys. Nil sorts by priority then name.
	SortingFunc func([]string) []string
	// DisableColors strips ANSI codes, for log files and CI output
	DisableColors bool
}

func NewColoredJSONFormatter() *ColoredJSONFormatter {
	return &ColoredJSONFormatter{
		TimestampFormat: time.RFC3339,
		SortingFunc:     prioritySorting,
	}
}

func (f *ColoredJSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	if f.SortingFunc != nil {
		keys = f.SortingFunc(keys)
	} else {
		keys = prioritySorting(keys)
	}

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	paint := func(c *color.Color, format string, args ...interface{}) string {
		if f.DisableColors {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	accent := levelColor(entry.Level)
	timestamp := f.TimestampFormat
	if timestamp == "" {
		timestamp = time.RFC3339
	}

	b.WriteString(paint(color.New(color.FgYellow), "%s", entry.Time.Format(timestamp)))
	b.WriteByte(' ')
	b.WriteString(paint(accent, "%-7s", strings.ToUpper(entry.Level.String())))
	b.WriteByte(' ')
	b.WriteString(paint(accent, "%s", entry.Message))

	for _, k := range keys {
		keyColor := color.New(color.FgCyan)
		if fieldRank[k] != 0 {
			keyColor = color.New(color.FgGreen)
		}
		b.WriteByte(' ')
		b.WriteString(paint(keyColor, "%s=", k))
		b.WriteString(paint(color.New(color.FgWhite), "%s", formatValue(entry.Data[k])))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%q", v.Error())
	case fmt.Stringer:
		return fmt.Sprintf("%q", v.String())
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

func levelColor(level logrus.Level) *color.Color {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return color.New(color.FgBlue)
	case logrus.InfoLevel:
		return color.New(color.FgGreen)
	case logrus.WarnLevel:
		return color.New(color.FgYellow)
	case logrus.ErrorLevel:
		return color.New(color.FgRed)
	case logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func prioritySorting(keys []string) []string {
	sort.Slice(keys, func(i, j int) bool {
		iRank, jRank := fieldRank[keys[i]], fieldRank[keys[j]]
		switch {
		case iRank != 0 && jRank != 0:
			return iRank < jRank
		case iRank != 0:
			return true
		case jRank != 0:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}
