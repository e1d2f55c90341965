package models

import (
	"time"

	"github.com/lib/pq"
)

// WrappedSummary is one cached summary row. Document holds the serialized
// cache record verbatim.
type WrappedSummary struct {
	ChannelID   string         `gorm:"primaryKey;column:channel_id"`
	Year        int            `gorm:"primaryKey;column:year"`
	Document    string         `gorm:"column:document;type:text;not null"`
	TopActorIDs pq.StringArray `gorm:"column:top_actor_ids;type:text[]"`
	CachedAt    time.Time      `gorm:"column:cached_at;not null"`
}

// TableName specifies the table name for the WrappedSummary model
func (WrappedSummary) TableName() string {
	return "wrapped_summaries"
}
