// Package metadatafile serves hazard dialog metadata from a directory of
// YAML files.
//
// Hazard metadata for a hazard type lives in <dir>/<phen.sig[.subtype]>.yaml.
// An ending variant, used while an event is ending, lives in
// <dir>/<phen.sig[.subtype]>.ending.yaml. Named files are read from
// <dir>/<name>.yaml. Each file holds a YAML list of field descriptors.
package metadatafile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/hazard-product-generator/internal/adapter/cache"
	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
)

// ErrNotFound is returned when no file exists for a request.
var ErrNotFound = errors.New("metadata not found")

// Store implements metadata.Service over a directory.
type Store struct {
	fsys    fs.FS
	cache   *cache.LRU[string, metadata.Set]
	metrics *observability.Metrics
}

// Open returns a Store over dir. Parsed files are cached, up to cacheSize.
func Open(dir string, cacheSize int, metrics *observability.Metrics) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("metadata dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("metadata dir %s is not a directory", dir)
	}
	return New(os.DirFS(dir), cacheSize, metrics), nil
}

// New returns a Store over fsys.
func New(fsys fs.FS, cacheSize int, metrics *observability.Metrics) *Store {
	return &Store{fsys: fsys, cache: cache.New[string, metadata.Set](cacheSize), metrics: metrics}
}

// HazardMetadata returns the metadata of the event's hazard type. Ending
// events read the ending variant when one exists. A hazard type with a
// subtype falls back to its phen.sig file.
func (s *Store) HazardMetadata(_ context.Context, event domain.HazardEvent) (metadata.Set, error) {
	names := []string{event.HazardType()}
	if event.Subtype != "" {
		names = append(names, event.PhenSig())
	}
	if event.Status == domain.StatusEnding {
		ending := make([]string, 0, len(names)*2)
		for _, n := range names {
			ending = append(ending, n+".ending")
		}
		names = append(ending, names...)
	}
	for _, n := range names {
		set, err := s.load(n)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return set, err
	}
	return nil, fmt.Errorf("%w: hazard type %s", ErrNotFound, event.HazardType())
}

// File returns the metadata stored under fileName.
func (s *Store) File(_ context.Context, fileName string) (metadata.Set, error) {
	return s.load(fileName)
}

func (s *Store) load(name string) (metadata.Set, error) {
	if set, ok := s.cache.Get(name); ok {
		s.metrics.ServiceCache.WithLabelValues("metadata", "hit").Inc()
		return set, nil
	}
	s.metrics.ServiceCache.WithLabelValues("metadata", "miss").Inc()

	path := filepath.ToSlash(filepath.Clean(name)) + ".yaml"
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	data, err := fs.ReadFile(s.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.cache.Put(name, set)
	return set, nil
}

// Decode parses a YAML list of field descriptors.
func Decode(data []byte) (metadata.Set, error) {
	var raw []any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return metadata.ParseList(raw)
}
