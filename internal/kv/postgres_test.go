package kv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	value []byte
	err   error
	exec  struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return stubRow{value: s.value, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	value []byte
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	ptr, ok := dest[0].(*[]byte)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.value
	return nil
}

func TestPostgresGet(t *testing.T) {
	store := NewPostgres(&stubExecutor{value: []byte(`{"provider":"Google"}`)})
	got, err := store.Get(context.Background(), "genforge-settings")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != `{"provider":"Google"}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestPostgresGetNoRows(t *testing.T) {
	store := NewPostgres(&stubExecutor{err: pgx.ErrNoRows})
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSet(t *testing.T) {
	exec := &stubExecutor{}
	store := NewPostgres(exec)
	if err := store.Set(context.Background(), "genforge-history", nil); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !strings.Contains(exec.exec.query, "insert into kv_entries") {
		t.Fatalf("unexpected query %q", exec.exec.query)
	}
	if len(exec.exec.args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[1].([]byte); !ok || v == nil {
		t.Fatalf("expected non-nil byte slice, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}
}

func TestPostgresEnsureSchemaWrapsError(t *testing.T) {
	store := NewPostgres(&stubExecutor{err: errors.New("boom")})
	err := store.EnsureSchema(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ensure schema") {
		t.Fatalf("expected wrapped schema error, got %v", err)
	}
}
