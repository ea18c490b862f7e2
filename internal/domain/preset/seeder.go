package preset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// Seeder loads preset definition files from a directory into the store.
// Each file holds one preset in the shape of a save request, written as
// JSON, YAML or TOML.
type Seeder struct {
	store  *Store
	dir    string
	logger *logging.Logger
}

// SeedResult summarizes a seeding pass.
type SeedResult struct {
	Loaded  int
	Skipped int
	Failed  int
}

// NewSeeder creates a seeder reading from dir.
func NewSeeder(store *Store, dir string, logger *logging.Logger) *Seeder {
	return &Seeder{
		store:  store,
		dir:    dir,
		logger: logger.Named("preset-seeder"),
	}
}

// Seed saves every preset file whose name is not already in the store.
// Presets edited at runtime are never overwritten. A file that fails to
// parse is logged and counted; it does not abort the pass.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	if s.dir == "" {
		return result, nil
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Presets directory not found", zap.String("dir", s.dir))
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to read presets directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && decoderFor(e.Name()) != nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(s.dir, name)
		req, err := LoadFile(path)
		if err != nil {
			s.logger.Warn("Failed to load preset file", zap.String("file", name), zap.Error(err))
			result.Failed++
			continue
		}
		if _, exists := s.store.Get(req.Name); exists {
			result.Skipped++
			continue
		}
		if _, err := s.store.Save(ctx, req); err != nil {
			s.logger.Warn("Failed to save seeded preset", zap.String("file", name), zap.Error(err))
			result.Failed++
			continue
		}
		result.Loaded++
	}

	s.logger.Info("Preset seeding complete",
		zap.Int("loaded", result.Loaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

type decodeFunc func(data []byte, v interface{}) error

func decoderFor(name string) decodeFunc {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return sonic.Unmarshal
	case ".yaml", ".yml":
		return yaml.Unmarshal
	case ".toml":
		return toml.Unmarshal
	default:
		return nil
	}
}

// LoadFile parses one preset definition. The document is decoded into a
// generic tree and re-encoded as JSON, so every format goes through the
// same widget data validation.
func LoadFile(path string) (types.SavePresetRequest, error) {
	var req types.SavePresetRequest

	decode := decoderFor(path)
	if decode == nil {
		return req, fmt.Errorf("unsupported preset file %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}

	var tree map[string]interface{}
	if err := decode(data, &tree); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	normalized, err := sonic.Marshal(tree)
	if err != nil {
		return req, fmt.Errorf("failed to normalize %s: %w", filepath.Base(path), err)
	}
	if err := sonic.Unmarshal(normalized, &req); err != nil {
		return req, fmt.Errorf("invalid preset in %s: %w", filepath.Base(path), err)
	}
	return req, nil
}
