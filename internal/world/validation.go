package world

import (
	"fmt"
	"time"
)

// Record is implemented by every entity kind held in a Collection.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Validate() error
}

// stamper is implemented by records that carry created/updated timestamps.
type stamper interface {
	stamp(now time.Time)
}

// ValidationError rejects a save; nothing is written when it is returned.
type ValidationError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("invalid %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
