package world

import (
	"github.com/google/uuid"
)

// IDFunc produces a fresh record identifier.
type IDFunc func() string

// NewID returns a time-ordered UUIDv7. The generator is monotonic within the
// process, so ids created in the same millisecond still differ and sort in
// creation order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
