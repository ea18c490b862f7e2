package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or contain path
// separators.
var ErrInvalidKey = errors.New("invalid document key")

// BlobStore persists whole JSON documents by key.
//
// Read decodes the document stored under key into v and reports whether it
// was present. A missing document is not an error. Write replaces the
// document; on failure the previous document remains intact.
type BlobStore interface {
	Read(ctx context.Context, key string, v interface{}) (bool, error)
	Write(ctx context.Context, key string, v interface{}) error
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
