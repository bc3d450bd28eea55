package services

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"capital-tracker/internal/apperr"
)

// Cursor is the resume position for keyset listing: the (date, id) pair of
// the last item returned, matching the fixed ordering date desc, id desc.
type Cursor struct {
	Date time.Time
	ID   string
}

// cursorPayload is the wire form: millisecond timestamp plus id, carried as
// unpadded base64url JSON. The token is opaque but unsigned; it holds no
// secret, only a replay-safe position.
type cursorPayload struct {
	D  *int64  `json:"d"`
	ID *string `json:"id"`
}

func EncodeCursor(date time.Time, id string) string {
	millis := date.UnixMilli()
	raw, _ := json.Marshal(cursorPayload{D: &millis, ID: &id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor rejects anything that is not a well-formed token with both
// fields present and typed; callers receive BAD_CURSOR, never a raw
// decoding error.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperr.BadCursor()
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.BadCursor()
	}
	if payload.D == nil || payload.ID == nil {
		return nil, apperr.BadCursor()
	}

	return &Cursor{
		Date: time.UnixMilli(*payload.D).UTC(),
		ID:   *payload.ID,
	}, nil
}
