// Package headers holds the per-interface header setters applied to every
// outgoing request. A Registry is built once at startup and is read-only
// afterwards, so it may be shared by any number of clients.
package headers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderUUID carries the caller's correlation id on CA requests.
const HeaderUUID = "UUID"

var ErrInvalidKey = errors.New("invalid registry key")

// AuthContext is the authentication state header setters read from.
type AuthContext struct {
	Token string
	UUID  string
	Name  string
}

// NewAuthContext returns an AuthContext with a freshly minted UUID.
func NewAuthContext(token, name string) AuthContext {
	return AuthContext{
		Token: token,
		UUID:  uuid.NewString(),
		Name:  name,
	}
}

type ctxKey int

const authKey ctxKey = 1

// WithAuth returns a copy of ctx carrying auth.
func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authKey, auth)
}

// AuthFrom returns the AuthContext stored in ctx, if any.
func AuthFrom(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authKey).(AuthContext)
	return auth, ok
}

// Setter mutates the outgoing headers for one interface.
type Setter func(h http.Header, auth AuthContext)

// Noop is the Setter used for unknown interface names.
func Noop(http.Header, AuthContext) {}

// SetCA injects the correlation UUID. An empty UUID sets nothing.
func SetCA(h http.Header, auth AuthContext) {
	if auth.UUID == "" {
		return
	}
	h[HeaderUUID] = []string{auth.UUID}
}

// Registry maps interface names to header setters.
type Registry struct {
	setters map[string]Setter
}

// NewRegistry validates entries and returns an immutable Registry. Keys
// must be non-blank upper-case profile codes and setters must be non-nil.
func NewRegistry(entries map[string]Setter) (*Registry, error) {
	for k, fn := range entries {
		if strings.TrimSpace(k) == "" || k != strings.ToUpper(k) || strings.ContainsAny(k, " \t") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		if fn == nil {
			return nil, fmt.Errorf("%w: nil setter for %q", ErrInvalidKey, k)
		}
	}

	return &Registry{setters: maps.Clone(entries)}, nil
}

// DefaultRegistry returns the registry for the built-in profiles.
func DefaultRegistry() *Registry {
	return &Registry{setters: map[string]Setter{
		"RIC": Noop,
		"CA":  SetCA,
	}}
}

// Lookup returns the setter registered under key, or Noop. It never fails.
func (r *Registry) Lookup(key string) Setter {
	if r == nil {
		return Noop
	}
	if fn, ok := r.setters[strings.TrimSpace(key)]; ok {
		return fn
	}

	return Noop
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.setters[strings.TrimSpace(key)]
	return ok
}

// Apply runs the setter registered under key against h.
func (r *Registry) Apply(key string, h http.Header, auth AuthContext) {
	r.Lookup(key)(h, auth)
}
