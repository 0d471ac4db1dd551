package credentials

import (
	"context"
	"errors"
)

// ErrNoSelector is returned when the host has no way to ask for a key.
var ErrNoSelector = errors.New("credentials: no key selector available")

// Selector starts interactive key selection, e.g. by notifying connected
// clients or prompting on a terminal.
type Selector func(ctx context.Context) error

// KeyLookup resolves the currently usable API key.
type KeyLookup interface {
	APIKey(ctx context.Context) (string, error)
}

// Host is the credential-management capability backing the authorization gate.
type Host struct {
	keys     KeyLookup
	selector Selector
}

func NewHost(keys KeyLookup, selector Selector) *Host {
	return &Host{keys: keys, selector: selector}
}

// HasSelectedCredential reports whether any key is currently resolvable.
func (h *Host) HasSelectedCredential(ctx context.Context) (bool, error) {
	key, err := h.keys.APIKey(ctx)
	if err != nil {
		return false, err
	}
	return key != "", nil
}

// OpenCredentialSelector triggers selection without waiting for its outcome.
func (h *Host) OpenCredentialSelector(ctx context.Context) error {
	if h.selector == nil {
		return ErrNoSelector
	}
	return h.selector(ctx)
}
