// Package storage is the persistence floor under the YAML
// repositories: flat byte blobs addressed by slash-separated paths,
// with a local-disk backend and an S3 backend behind one contract.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports that a path holds no stored object. Backends
// wrap it with the offending path so callers can match via errors.Is.
var ErrNotFound = errors.New("not found")

// Storage is the contract both backends satisfy. List returns full
// paths under prefix, not bare file names, and an unknown prefix lists
// empty rather than failing.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}
