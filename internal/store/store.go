package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Get when no partition exists for the key.
var ErrNotFound = errors.New("partition not found")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is the persistence port shared by every world module. Each key holds
// one partition, written and replaced as a whole value.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ValidateKey rejects keys that cannot be stored safely by every backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid partition key %q", key)
	}
	return nil
}
