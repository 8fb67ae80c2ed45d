package store

import (
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Record is anything stored in a RecordStore, identified by an int64 id
type Record interface {
	RecordID() int64
}

// RecordStore keeps an ordered collection of records as one JSON array file.
//
// Mutations go through Mutate, which holds a per-store lock for the whole
// load -> modify -> save cycle, so concurrent writers inside one process never
// lose each other's updates. The file is replaced atomically on every save;
// readers do not take the lock and always see a complete collection.
type RecordStore[T Record] struct {
	path string
	mu   sync.Mutex
}

func NewRecordStore[T Record](path string) *RecordStore[T] {
	return &RecordStore[T]{path: path}
}

func (s *RecordStore[T]) Path() string {
	return s.path
}

// LoadAll returns the stored records in file order. A missing, unreadable or
// corrupt file behaves as an empty store.
func (s *RecordStore[T]) LoadAll() []T {
	var records []T
	if err := readJSON(s.path, &records); err != nil {
		logUnreadable(s.path, err)
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

// SaveAll replaces the whole collection on disk
func (s *RecordStore[T]) SaveAll(records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

// Mutate runs one serialized read-modify-write cycle. Nothing is written when
// fn returns an error.
func (s *RecordStore[T]) Mutate(fn func(records []T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := fn(s.LoadAll())
	if err != nil {
		return err
	}
	return s.save(out)
}

func (s *RecordStore[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	if err := writeJSON(s.path, records); err != nil {
		return errors.WithMessagef(err, "save %d records", len(records))
	}
	return nil
}

// Check reports whether the backing file is corrupt or unreadable
func (s *RecordStore[T]) Check() error {
	var records []T
	return checkJSON(s.path, &records)
}

// FindByID returns the index of the first record with id, or -1
func FindByID[T Record](records []T, id int64) int {
	for i, r := range records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

func logUnreadable(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Debug("store file missing, using empty value", zap.String("namespace", "store"), zap.String("path", path))
		return
	}
	zap.L().Warn("store unreadable, using empty value",
		zap.String("namespace", "store"),
		zap.String("path", path),
		zap.Error(err))
}
