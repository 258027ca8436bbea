package repository

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by storage that cannot be used at all,
// e.g. a profile whose database could not be opened.
var ErrUnavailable = errors.New("storage unavailable")

// KeyValue is durable key/value storage scoped to a single origin.
// Get reports ok=false for a missing key without an error.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Ensure implementations satisfy KeyValue at compile time.
var (
	_ KeyValue = (*StorageSQLite)(nil)
	_ KeyValue = (*Memory)(nil)
	_ KeyValue = Unavailable{}
)

// Unavailable is storage that fails every call with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (Unavailable) Set(context.Context, string, string) error { return ErrUnavailable }

func (Unavailable) Remove(context.Context, string) error { return ErrUnavailable }
