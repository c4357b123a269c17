package validation

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidUUID marks identifiers that fail to parse as UUIDs.
var ErrInvalidUUID = fmt.Errorf("invalid UUID format")

// ValidateUUID checks that id is a well-formed UUID. Every entity and user
// identifier in the API is one.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}
