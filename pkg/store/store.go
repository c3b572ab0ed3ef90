// Package store manages the local package store: the directory tree that
// realized packages are unpacked into, one entry per store hash.
//
// Entries live at <root>/<hash>-<name-version>/ with the conventional
// bin/ lib/ include/ lib/pkgconfig/ layout inside. The store itself is
// append-only; entries are never mutated after realization.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Store is a handle on a local package store rooted at one directory.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created lazily by
// the first write.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Entry addresses one store entry. The entry may or may not exist on disk.
func (s *Store) Entry(hash, nameVersion string) Entry {
	return Entry{
		Hash:        hash,
		NameVersion: nameVersion,
		Path:        filepath.Join(s.root, hash+"-"+nameVersion),
	}
}

// Has reports whether the entry has been realized.
func (s *Store) Has(hash, nameVersion string) bool {
	info, err := os.Stat(s.Entry(hash, nameVersion).Path)
	return err == nil && info.IsDir()
}

// List returns all realized entries, sorted by name-version.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		hash, nameVersion, ok := strings.Cut(d.Name(), "-")
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Hash:        hash,
			NameVersion: nameVersion,
			Path:        filepath.Join(s.root, d.Name()),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NameVersion < entries[j].NameVersion
	})
	return entries, nil
}

// Lock takes the store writer lock, serializing concurrent realizes into
// the same store. The returned release function must be called once.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}

	fl := flock.New(filepath.Join(s.root, ".lock"))
	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("locking store: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store %s is locked by another process", s.root)
	}
	return fl.Unlock, nil
}

// Entry is one realized (or addressable) package in the store.
type Entry struct {
	Hash        string
	NameVersion string
	Path        string
}

// Name returns the package name half of NameVersion, best effort: the
// version is taken to start at the first dash followed by a digit.
func (e Entry) Name() string {
	for i := 0; i < len(e.NameVersion)-1; i++ {
		if e.NameVersion[i] == '-' && e.NameVersion[i+1] >= '0' && e.NameVersion[i+1] <= '9' {
			return e.NameVersion[:i]
		}
	}
	return e.NameVersion
}

// Version returns the version half of NameVersion, if present.
func (e Entry) Version() string {
	name := e.Name()
	if name == e.NameVersion {
		return ""
	}
	return e.NameVersion[len(name)+1:]
}
