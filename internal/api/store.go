package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

const catalogExt = ".msg"

// CatalogStore opens catalogs from one directory on first use and keeps
// them mapped until Close. A catalog whose file changed on disk since it
// was opened is mapped again on the next Get; the superseded mapping
// stays valid for callers still holding it and is released by Close.
type CatalogStore struct {
	dir     string
	mu      sync.Mutex
	cache   map[string]*cachedCatalog
	retired []*msgfile.File
}

type cachedCatalog struct {
	file    *msgfile.File
	path    string
	size    int64
	modTime time.Time
}

func (c *cachedCatalog) current(st os.FileInfo) bool {
	return st.Size() == c.size && st.ModTime().Equal(c.modTime)
}

func NewCatalogStore(dir string) *CatalogStore {
	return &CatalogStore{
		dir:   dir,
		cache: make(map[string]*cachedCatalog),
	}
}

// Dir returns the directory served by the store.
func (s *CatalogStore) Dir() string {
	return s.dir
}

// Get returns the catalog called name, with or without its ".msg"
// extension. Names containing path separators are rejected.
func (s *CatalogStore) Get(name string) (*msgfile.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, newInvalidRequest(fmt.Sprintf("invalid catalog name %q", name))
	}
	key := name
	if strings.EqualFold(filepath.Ext(name), catalogExt) {
		key = strings.TrimSuffix(name, filepath.Ext(name))
	}
	key = strings.ToLower(key)

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		st, err := os.Stat(cached.path)
		if err == nil && cached.current(st) {
			return cached.file, nil
		}
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	loaded, err := msgfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	entry := &cachedCatalog{file: loaded, path: path, size: st.Size(), modTime: st.ModTime()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[key]; ok {
		if existing.path == path && existing.current(st) {
			_ = loaded.Close()
			return existing.file, nil
		}
		s.retired = append(s.retired, existing.file)
	}
	s.cache[key] = entry
	return loaded, nil
}

// List returns the names, without extension, of every catalog in the
// directory, sorted.
func (s *CatalogStore) List() ([]string, error) {
	paths, err := discoverCatalogs(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		names = append(names, strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base))))
	}
	slices.Sort(names)
	return names, nil
}

// Close unmaps every cached catalog.
func (s *CatalogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for k, c := range s.cache {
		errs = append(errs, c.file.Close())
		delete(s.cache, k)
	}
	for _, mf := range s.retired {
		errs = append(errs, mf.Close())
	}
	s.retired = nil
	return errors.Join(errs...)
}

// resolve matches key against the directory listing case-insensitively.
func (s *CatalogStore) resolve(key string) (string, error) {
	paths, err := discoverCatalogs(s.dir)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		base := filepath.Base(p)
		if strings.EqualFold(strings.TrimSuffix(base, filepath.Ext(base)), key) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCatalogNotFound, key)
}

func discoverCatalogs(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("catalog path is not a directory: %s", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || e.Type()&fs.ModeType != 0 {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), catalogExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
