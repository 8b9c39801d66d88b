package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// SQLiteTokenStore keeps the token record in a row of the token_slots table.
type SQLiteTokenStore struct {
	db   *DB
	slot string
}

// NewSQLiteTokenStore creates a TokenStore using the named slot.
func NewSQLiteTokenStore(db *DB, slot string) *SQLiteTokenStore {
	if slot == "" {
		slot = DefaultSlot
	}
	return &SQLiteTokenStore{db: db, slot: slot}
}

func (s *SQLiteTokenStore) Save(ctx context.Context, rec domain.TokenRecord) error {
	data, err := domain.EncodeTokenRecord(rec)
	if err != nil {
		return err
	}
	return s.saveRaw(ctx, data)
}

func (s *SQLiteTokenStore) saveRaw(ctx context.Context, data []byte) error {
	now := time.Now().UTC().Format(time.DateTime)
	_, err := s.db.sql.ExecContext(ctx, `
		INSERT INTO token_slots (slot, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, s.slot, data, now)
	if err != nil {
		return fmt.Errorf("saving token slot %s: %w", s.slot, err)
	}
	return nil
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (domain.TokenRecord, error) {
	var data []byte
	err := s.db.sql.QueryRowContext(ctx,
		"SELECT data FROM token_slots WHERE slot = ?", s.slot,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TokenRecord{}, ErrNotFound
		}
		return domain.TokenRecord{}, fmt.Errorf("loading token slot %s: %w", s.slot, err)
	}
	return decodeSlot(data)
}

func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.sql.ExecContext(ctx, "DELETE FROM token_slots WHERE slot = ?", s.slot); err != nil {
		return fmt.Errorf("clearing token slot %s: %w", s.slot, err)
	}
	return nil
}
