package store

import (
	"context"
	"errors"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// DefaultSlot is the key the kiosk persists its token record under.
const DefaultSlot = "hospital_token_data"

// ErrNotFound is returned when the slot or a chat session does not exist.
var ErrNotFound = errors.New("not found")

// TokenStore persists a single token record so a patient can resume after
// the kiosk restarts.
type TokenStore interface {
	// Save replaces the stored record.
	Save(ctx context.Context, rec domain.TokenRecord) error

	// Load returns the stored record. It returns ErrNotFound when the slot is
	// empty and an error wrapping domain.ErrCorruptRecord when the slot holds
	// data that does not decode to a complete record.
	Load(ctx context.Context) (domain.TokenRecord, error)

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// decodeSlot turns raw slot bytes into a record.
func decodeSlot(data []byte) (domain.TokenRecord, error) {
	if len(data) == 0 {
		return domain.TokenRecord{}, ErrNotFound
	}
	return domain.DecodeTokenRecord(data)
}
