package authgate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeHost struct {
	selected   bool
	checkErr   error
	openErr    error
	checkCalls int
	openCalls  int
}

func (h *fakeHost) HasSelectedCredential(ctx context.Context) (bool, error) {
	h.checkCalls++
	return h.selected, h.checkErr
}

func (h *fakeHost) OpenCredentialSelector(ctx context.Context) error {
	h.openCalls++
	return h.openErr
}

func TestEnsureAuthorizedExistingCredential(t *testing.T) {
	host := &fakeHost{selected: true}
	gate := New(host, nil, nil)

	if !gate.EnsureAuthorized(context.Background()) {
		t.Fatal("expected authorization")
	}
	if host.checkCalls != 1 || host.openCalls != 0 {
		t.Fatalf("unexpected host calls: check=%d open=%d", host.checkCalls, host.openCalls)
	}
	if !gate.Authorized() {
		t.Fatal("expected state to be set")
	}
}

func TestEnsureAuthorizedSecondCallIsFree(t *testing.T) {
	host := &fakeHost{selected: true}
	gate := New(host, nil, nil)

	gate.EnsureAuthorized(context.Background())
	if !gate.EnsureAuthorized(context.Background()) {
		t.Fatal("expected authorization on second call")
	}
	if host.checkCalls != 1 || host.openCalls != 0 {
		t.Fatalf("second call performed I/O: check=%d open=%d", host.checkCalls, host.openCalls)
	}
}

func TestEnsureAuthorizedOpensSelectorOptimistically(t *testing.T) {
	host := &fakeHost{}
	gate := New(host, nil, nil)

	if !gate.EnsureAuthorized(context.Background()) {
		t.Fatal("expected optimistic authorization after opening selector")
	}
	if host.checkCalls != 1 || host.openCalls != 1 {
		t.Fatalf("unexpected host calls: check=%d open=%d", host.checkCalls, host.openCalls)
	}
	if !gate.Authorized() {
		t.Fatal("expected state to be set")
	}
}

func TestEnsureAuthorizedWithoutHost(t *testing.T) {
	state := &State{}
	gate := New(nil, state, nil)

	if gate.EnsureAuthorized(context.Background()) {
		t.Fatal("expected no authorization without host")
	}
	if state.Authorized() {
		t.Fatal("state must not change without host")
	}
}

func TestEnsureAuthorizedHostErrors(t *testing.T) {
	cases := map[string]*fakeHost{
		"check": {checkErr: errors.New("boom")},
		"open":  {openErr: errors.New("boom")},
	}
	for name, host := range cases {
		t.Run(name, func(t *testing.T) {
			gate := New(host, nil, nil)
			if gate.EnsureAuthorized(context.Background()) {
				t.Fatal("expected failure")
			}
			if gate.Authorized() {
				t.Fatal("state must stay false on host error")
			}
		})
	}
}

func TestInvalidateForcesRecheck(t *testing.T) {
	host := &fakeHost{selected: true}
	gate := New(host, nil, nil)

	gate.EnsureAuthorized(context.Background())
	gate.Invalidate()
	if gate.Authorized() {
		t.Fatal("expected state cleared")
	}
	gate.EnsureAuthorized(context.Background())
	if host.checkCalls != 2 {
		t.Fatalf("expected re-check after invalidate, got %d checks", host.checkCalls)
	}
}

func TestStateConcurrentAccess(t *testing.T) {
	var state State
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); state.Set() }()
		go func() { defer wg.Done(); state.Clear() }()
	}
	wg.Wait()
	state.Set()
	if !state.Authorized() {
		t.Fatal("expected last write to win")
	}
}
