// Package storage persists finished report artifacts.
package storage

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Store writes and reads report artifacts by key. Put must never leave a
// partially written object visible under key.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (location string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
}

var ErrNotFound = errors.New("artifact not found")

type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s artifact %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
