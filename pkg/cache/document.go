package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/channelwrapped/wrapbot/pkg/wrapped"
)

const documentVersion = 1

// document is the persisted envelope. The key is repeated inside the record
// so a misplaced or truncated file is detected on read.
type document struct {
	Version   int                  `json:"version"`
	ChannelID string               `json:"channelId"`
	Year      int                  `json:"year"`
	Summary   *wrapped.WrapSummary `json:"summary"`
}

// Encode serializes summary for key.
func Encode(key Key, summary *wrapped.WrapSummary) ([]byte, error) {
	if err := summary.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summary: %w", err)
	}
	return json.Marshal(document{
		Version:   documentVersion,
		ChannelID: key.ChannelID,
		Year:      key.Year,
		Summary:   summary,
	})
}

// Decode parses a record and checks it belongs to key.
func Decode(key Key, data []byte) (*wrapped.WrapSummary, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse cache record: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after cache record")
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("unsupported cache record version %d", doc.Version)
	}
	if doc.ChannelID != key.ChannelID || doc.Year != key.Year {
		return nil, fmt.Errorf("cache record for %s:%d stored under %s", doc.ChannelID, doc.Year, key)
	}
	if err := doc.Summary.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cached summary: %w", err)
	}
	if doc.Summary.TopActors == nil {
		doc.Summary.TopActors = []wrapped.TopActor{}
	}
	if doc.Summary.TopReactions == nil {
		doc.Summary.TopReactions = []wrapped.TopReaction{}
	}
	return doc.Summary, nil
}
