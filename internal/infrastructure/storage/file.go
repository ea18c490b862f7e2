package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
)

// FileStore keeps one indented JSON file per key under a directory.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

// NewFileStore creates the directory if needed and returns a store rooted
// there.
func NewFileStore(dir string, logger *logging.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger.Named("storage")}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// CorruptSuffix is appended to the file name of a document that failed to
// decode when it is moved aside.
const CorruptSuffix = ".corrupt"

// Read loads key into v. A document that fails to decode is moved aside to
// Path(key)+CorruptSuffix and reported as absent, so the caller can fall
// back to its seed state without overwriting it.
func (s *FileStore) Read(ctx context.Context, key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		aside := path + CorruptSuffix
		if rerr := os.Rename(path, aside); rerr != nil {
			return false, fmt.Errorf("failed to move aside unreadable %s: %w", key, rerr)
		}
		s.logger.Warn("Moved aside unreadable document",
			zap.String("key", key),
			zap.String("path", aside),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// Write encodes v and atomically replaces the file for key.
func (s *FileStore) Write(ctx context.Context, key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := atomicWrite(s.Path(key), data, s.dir); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.logger.Debug("Document written", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// atomicWrite writes data to path via a temporary file in the same
// directory and a rename.
func atomicWrite(path string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	success = true
	return nil
}
