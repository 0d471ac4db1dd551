// Package authgate decides whether a usable credential exists before work that
// needs one is submitted, and drives the one-time interactive selection flow.
package authgate

import (
	"context"

	"github.com/bprateek14/video-generation-platform/internal/infra"
)

// Host is the optional credential-management capability of the environment.
type Host interface {
	// HasSelectedCredential reports whether a credential was already selected.
	HasSelectedCredential(ctx context.Context) (bool, error)

	// OpenCredentialSelector starts interactive selection. It does not wait
	// for, or report, the outcome.
	OpenCredentialSelector(ctx context.Context) error
}

// Gate mediates access to the shared authorization State.
type Gate struct {
	host   Host
	state  *State
	logger *infra.Logger
}

// New builds a Gate. A nil host means the environment has no
// credential-management capability; a nil state allocates a private one.
func New(host Host, state *State, logger *infra.Logger) *Gate {
	if state == nil {
		state = &State{}
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Gate{host: host, state: state, logger: logger}
}

// EnsureAuthorized reports whether a credential is available, establishing it
// on first use.
//
// Once the state is set it returns true without I/O. Otherwise it asks the
// host for an existing selection and, failing that, opens the selector once
// and assumes success: the host cannot confirm the outcome, so a bad or
// missing key only surfaces when the remote service rejects it.
func (g *Gate) EnsureAuthorized(ctx context.Context) bool {
	if g.state.Authorized() {
		return true
	}
	if g.host == nil {
		return false
	}

	selected, err := g.host.HasSelectedCredential(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("authgate: credential check failed")
		return false
	}
	if selected {
		g.state.Set()
		return true
	}

	if err := g.host.OpenCredentialSelector(ctx); err != nil {
		g.logger.Error().Err(err).Msg("authgate: credential selector failed")
		return false
	}
	g.logger.Info().Msg("authgate: credential selector opened; assuming a key was selected")
	g.state.Set()
	return true
}

// Invalidate clears the state so the next EnsureAuthorized re-checks the host.
func (g *Gate) Invalidate() {
	g.state.Clear()
}

// Authorized reports the current state without touching the host.
func (g *Gate) Authorized() bool {
	return g.state.Authorized()
}
