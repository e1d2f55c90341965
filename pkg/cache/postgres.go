package cache

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelwrapped/wrapbot/pkg/db/models"
)

// PostgresStore keeps records in the wrapped_summaries table. Upserts are a
// single statement so readers see the old or the new row.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore uses an already migrated connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, key Key) ([]byte, error) {
	var record models.WrappedSummary
	err := s.db.WithContext(ctx).
		Where("channel_id = ? AND year = ?", key.ChannelID, key.Year).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(record.Document), nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, entry Entry) error {
	record := models.WrappedSummary{
		ChannelID:   entry.Key.ChannelID,
		Year:        entry.Key.Year,
		Document:    string(entry.Document),
		TopActorIDs: entry.TopActorIDs,
		CachedAt:    entry.CachedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "top_actor_ids", "cached_at"}),
		}).
		Create(&record).Error
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, key Key) error {
	result := s.db.WithContext(ctx).
		Where("channel_id = ? AND year = ?", key.ChannelID, key.Year).
		Delete(&models.WrappedSummary{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
