package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DataDir is the project subdirectory holding the entity files.
const DataDir = "data"

// Store owns the current Tables and, when backed by a directory, their CSV
// files. All access goes through View and Update, which hold a single lock
// so a matching pass never observes another writer's partial changes.
type Store struct {
	mu     sync.Mutex
	dir    string // empty for memory-only stores
	tables *Tables
}

// NewMemory returns a store that is never written to disk.
func NewMemory() *Store {
	return &Store{tables: NewTables()}
}

// NewMemoryFrom returns a memory-only store holding tables.
func NewMemoryFrom(tables *Tables) *Store {
	return &Store{tables: tables.Clone()}
}

// Create writes empty data files under <repoRoot>/data and returns the store.
func Create(repoRoot string) (*Store, error) {
	dir := filepath.Join(repoRoot, DataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Store{dir: dir, tables: NewTables()}
	if err := s.persist(s.tables, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Open loads the data files under <repoRoot>/data. Missing files load as
// empty tables.
func Open(repoRoot string) (*Store, error) {
	dir := filepath.Join(repoRoot, DataDir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening data dir: %s is not a directory", dir)
	}

	tables := NewTables()
	if tables.Transactions, err = loadTable(dir, transactionsCodec); err != nil {
		return nil, err
	}
	if tables.Tenants, err = loadTable(dir, tenantsCodec); err != nil {
		return nil, err
	}
	if tables.Assignments, err = loadTable(dir, assignmentsCodec); err != nil {
		return nil, err
	}
	if tables.Rejections, err = loadTable(dir, rejectionsCodec); err != nil {
		return nil, err
	}
	return &Store{dir: dir, tables: tables}, nil
}

// Dir returns the data directory, or "" for memory stores.
func (s *Store) Dir() string {
	return s.dir
}

// View runs fn against the current tables. fn must not modify them.
func (s *Store) View(fn func(*Tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tables)
}

// Update runs fn against a copy of the current tables. If fn returns an
// error nothing changes. Otherwise every table fn modified is written out
// and the copy becomes current. A write error is returned and the in-memory
// tables stay at their previous state.
func (s *Store) Update(fn func(*Tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tables.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next, false); err != nil {
		return err
	}
	s.tables = next
	return nil
}

type pendingFile struct {
	tmp, dst string
}

// persist writes changed tables to temp files first and renames them into
// place only once every temp file is complete.
func (s *Store) persist(t *Tables, all bool) error {
	if s.dir == "" {
		return nil
	}

	var pending []pendingFile
	cleanup := func() {
		for _, p := range pending {
			_ = os.Remove(p.tmp)
		}
	}

	stage := func(p pendingFile, err error) error {
		if err != nil {
			cleanup()
			return err
		}
		if p.tmp != "" {
			pending = append(pending, p)
		}
		return nil
	}

	if all || t.Transactions.Dirty() {
		if err := stage(writeTemp(s.dir, transactionsCodec, t.Transactions)); err != nil {
			return err
		}
	}
	if all || t.Tenants.Dirty() {
		if err := stage(writeTemp(s.dir, tenantsCodec, t.Tenants)); err != nil {
			return err
		}
	}
	if all || t.Assignments.Dirty() {
		if err := stage(writeTemp(s.dir, assignmentsCodec, t.Assignments)); err != nil {
			return err
		}
	}
	if all || t.Rejections.Dirty() {
		if err := stage(writeTemp(s.dir, rejectionsCodec, t.Rejections)); err != nil {
			return err
		}
	}

	for i, p := range pending {
		if err := os.Rename(p.tmp, p.dst); err != nil {
			for _, rest := range pending[i:] {
				_ = os.Remove(rest.tmp)
			}
			return fmt.Errorf("replacing %s: %w", filepath.Base(p.dst), err)
		}
	}
	return nil
}

func loadTable[T Record](dir string, c codec[T]) (*Table[T], error) {
	f, err := os.Open(filepath.Join(dir, c.file))
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable[T](), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.file, err)
	}
	defer f.Close()

	rows, err := c.read(f)
	if err != nil {
		return nil, err
	}
	return NewTable(rows...), nil
}

func writeTemp[T Record](dir string, c codec[T], t *Table[T]) (pendingFile, error) {
	f, err := os.CreateTemp(dir, c.file+".tmp-*")
	if err != nil {
		return pendingFile{}, fmt.Errorf("creating temp file for %s: %w", c.file, err)
	}

	if err := c.write(f, t.List()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return pendingFile{}, fmt.Errorf("writing %s: %w", c.file, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return pendingFile{}, fmt.Errorf("closing %s: %w", c.file, err)
	}
	return pendingFile{tmp: f.Name(), dst: filepath.Join(dir, c.file)}, nil
}
