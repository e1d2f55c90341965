// Package cache persists WrapSummary results keyed by channel and year.
//
// Reads never fail the caller: a missing, unreadable or corrupt record is a
// miss. Writes are best effort and only logged on failure.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by a Store when no record exists for a key.
var ErrNotFound = errors.New("cache record not found")

// Key identifies one cached summary.
type Key struct {
	ChannelID string
	Year      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.ChannelID, k.Year)
}

// Entry is one record handed to a Store.
type Entry struct {
	Key         Key
	Document    []byte
	TopActorIDs []string
	CachedAt    time.Time
}

// Store is a flat key/document store. Save must replace a record atomically so
// a concurrent Load sees either the old or the new document.
type Store interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key Key) error
}

// Cache is the summary cache used by the job controller.
type Cache struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

// New wraps store.
func New(store Store, logger *logrus.Logger) *Cache {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cache{store: store, logger: logger, now: time.Now}
}

// Get returns the cached summary for (channelID, year), or false on any miss.
func (c *Cache) Get(ctx context.Context, channelID string, year int) (*wrapped.WrapSummary, bool) {
	key := Key{ChannelID: channelID, Year: year}
	log := c.logger.WithFields(logrus.Fields{"channel_id": channelID, "year": year})

	data, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("Cache read failed, treating as miss")
		}
		return nil, false
	}

	summary, err := Decode(key, data)
	if err != nil {
		log.WithError(err).Warn("Corrupt cache record, treating as miss")
		return nil, false
	}

	log.Debug("Cache hit")
	return summary, true
}

// Put stores summary for (channelID, year). Failures are logged, not returned.
func (c *Cache) Put(ctx context.Context, channelID string, year int, summary *wrapped.WrapSummary) {
	key := Key{ChannelID: channelID, Year: year}
	log := c.logger.WithFields(logrus.Fields{"channel_id": channelID, "year": year})

	data, err := Encode(key, summary)
	if err != nil {
		log.WithError(err).Error("Failed to encode summary for cache")
		return
	}

	ids := make([]string, 0, len(summary.TopActors))
	for _, actor := range summary.TopActors {
		ids = append(ids, actor.ID)
	}

	if err := c.store.Save(ctx, Entry{Key: key, Document: data, TopActorIDs: ids, CachedAt: c.now().UTC()}); err != nil {
		log.WithError(err).Error("Cache write failed")
		return
	}
	log.Debug("Summary cached")
}

// Invalidate removes the record for (channelID, year). It is an operator
// action and never called on the job path.
func (c *Cache) Invalidate(ctx context.Context, channelID string, year int) error {
	err := c.store.Delete(ctx, Key{ChannelID: channelID, Year: year})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
