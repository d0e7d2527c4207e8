package profile

import (
	"fmt"

	"github.com/adamwoolhether/profilehttp/internal/validate"
)

// Validate reports whether cfg is usable by a client.
func Validate(cfg Config) error {
	if err := validate.Check(cfg); err != nil {
		return fmt.Errorf("invalid %s profile: %w", cfg.Kind, err)
	}

	return nil
}
