package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes an entry as the tuple [durationHours, imageRef, customMessage|null].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.DurationHours, e.ImageRef, e.CustomMessage})
}

// UnmarshalJSON decodes the tuple form written by MarshalJSON.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("timer entry: want 3 elements, got %d", len(raw))
	}
	var out Entry
	if err := json.Unmarshal(raw[0], &out.DurationHours); err != nil {
		return fmt.Errorf("timer entry duration: %w", err)
	}
	var image *string
	if err := json.Unmarshal(raw[1], &image); err != nil {
		return fmt.Errorf("timer entry image: %w", err)
	}
	if image != nil {
		out.ImageRef = *image
	}
	if err := json.Unmarshal(raw[2], &out.CustomMessage); err != nil {
		return fmt.Errorf("timer entry message: %w", err)
	}
	*e = out
	return nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
