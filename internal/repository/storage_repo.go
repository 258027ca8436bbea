package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StorageSQLite keeps one origin's key/value items in the local_storage table.
type StorageSQLite struct {
	db     *sql.DB
	origin string
}

func NewStorageSQLite(db *sql.DB, origin string) *StorageSQLite {
	return &StorageSQLite{db: db, origin: origin}
}

const (
	selectItemSQL = `SELECT value FROM local_storage WHERE origin = ? AND item_key = ?`

	upsertItemSQL = `
		INSERT INTO local_storage (origin, item_key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(origin, item_key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	deleteItemSQL = `DELETE FROM local_storage WHERE origin = ? AND item_key = ?`
)

// Get returns the stored value for key. A missing row is (""; false; nil).
func (r *StorageSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectItemSQL, r.origin, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select item %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (r *StorageSQLite) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertItemSQL, r.origin, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert item %q: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error.
func (r *StorageSQLite) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteItemSQL, r.origin, key); err != nil {
		return fmt.Errorf("delete item %q: %w", key, err)
	}
	return nil
}
