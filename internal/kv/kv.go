// Package kv provides the opaque key-value persistence used for conversation
// history, settings and stored credentials. Values are raw bytes; callers own
// the encoding.
//
// Three implementations are available: BadgerDB for single-node deployments,
// Postgres for shared deployments and an in-memory map for tests.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Store is the interface for a flat key-value store.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
