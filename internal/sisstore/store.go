package sisstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"genarrative/internal/config"
	"genarrative/internal/sis"
)

// ErrNotFound indicates no document file exists for the requested ID.
var ErrNotFound = errors.New("document file not found")

// Store reads and writes SIS document files under a single directory.
type Store struct {
	dir string
}

// New opens the document store rooted in the config's data directory.
func New(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	dir := filepath.Join(cfg.Paths.DataDir, "documents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding document files.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns where the document with the given ID lives on disk.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes a document, replacing any previous version atomically.
func (s *Store) Save(doc sis.Document) error {
	id := doc.ID()
	if strings.TrimSpace(id) == "" {
		return errors.New("document has no ID")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", id, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write document %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document %s: %w", id, err)
	}
	return nil
}

// Load reads and decodes one document by ID.
func (s *Store) Load(id string) (sis.Document, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read document %s: %w", id, err)
	}
	doc, err := sis.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

// Exists reports whether a document file is present for the ID.
func (s *Store) Exists(id string) bool {
	info, err := os.Stat(s.Path(id))
	return err == nil && !info.IsDir()
}

// Delete removes a document file. Deleting a missing document is an error
// so callers notice stale IDs.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// ListIDs returns the IDs of all stored documents in sorted order.
func (s *Store) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
