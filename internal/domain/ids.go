package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// CheckID rejects identifiers that cannot name a stored entity. A malformed
// id is reported as not found so it never reaches a query.
func CheckID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	return nil
}
