package kv

import (
	"context"
	"fmt"

	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/sqlinline"
)

// Postgres is a Store backed by the kv_entries table.
type Postgres struct {
	sql infra.SQLExecutor
}

// NewPostgres wraps an SQL executor, normally an *infra.SQLRunner.
func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

// EnsureSchema creates the kv_entries table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QCreateKVEntries); err != nil {
		return fmt.Errorf("kv: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	row := p.sql.QueryRow(ctx, sqlinline.QSelectKVEntry, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := p.sql.Exec(ctx, sqlinline.QUpsertKVEntry, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.sql.Exec(ctx, sqlinline.QDeleteKVEntry, key)
	return err
}

// Close is a no-op; the pool is owned by the caller.
func (p *Postgres) Close() error { return nil }

var _ Store = (*Postgres)(nil)
