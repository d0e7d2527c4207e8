package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/adamwoolhether/profilehttp/internal/validate"
)

// DummyPath is the path every profile resolves to in dummy mode.
const DummyPath = "/dummy-server"

// ErrUnknownKind is returned when a profile kind has no base URL mapping.
var ErrUnknownKind = errors.New("unknown profile kind")

// Resolver supplies base URLs for profile kinds.
type Resolver interface {
	ResolveBaseURL(kind Kind) (string, error)
	IsDummyMode() bool
}

// Environment is the Resolver backed by process environment variables.
type Environment struct {
	RICURL    string `env:"PROFILEHTTP_RIC_URL"`
	CAURL     string `env:"PROFILEHTTP_CA_URL"`
	Dummy     bool   `env:"PROFILEHTTP_DUMMY" envDefault:"false"`
	DummyHost string `env:"PROFILEHTTP_DUMMY_HOST" envDefault:"http://127.0.0.1:3000" validate:"required_if=Dummy true,omitempty,url"`
}

// LoadEnvironment reads the Environment from the process environment.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("parse env: %w", err)
	}

	if err := e.Validate(); err != nil {
		return Environment{}, err
	}

	return e, nil
}

// Validate reports whether e can resolve base URLs. Dummy mode needs an
// absolute DummyHost.
func (e Environment) Validate() error {
	if err := validate.Check(e); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}

	return nil
}

// IsDummyMode reports whether all profiles are routed to the dummy backend.
func (e Environment) IsDummyMode() bool {
	return e.Dummy
}

// ResolveBaseURL returns the base URL for kind. In dummy mode every kind
// resolves to DummyHost joined with DummyPath.
func (e Environment) ResolveBaseURL(kind Kind) (string, error) {
	if e.Dummy {
		return strings.TrimRight(e.DummyHost, "/") + DummyPath, nil
	}

	switch kind {
	case KindDefault:
		return e.RICURL, nil
	case KindCA:
		return e.CAURL, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
