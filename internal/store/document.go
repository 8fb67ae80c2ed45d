package store

import (
	"sync"

	"github.com/pkg/errors"
)

// DocumentStore keeps a single JSON object in its own file. It follows the
// same contract as RecordStore: reads never fail, saves replace the file.
type DocumentStore[T any] struct {
	path string
	def  func() T
	mu   sync.Mutex
}

// NewDocumentStore creates a store returning def() whenever the file is missing or invalid
func NewDocumentStore[T any](path string, def func() T) *DocumentStore[T] {
	return &DocumentStore[T]{path: path, def: def}
}

func (s *DocumentStore[T]) Path() string {
	return s.path
}

func (s *DocumentStore[T]) Load() T {
	v := s.def()
	if err := readJSON(s.path, &v); err != nil {
		logUnreadable(s.path, err)
		return s.def()
	}
	return v
}

func (s *DocumentStore[T]) Check() error {
	v := s.def()
	return checkJSON(s.path, &v)
}

// Save fully overwrites the stored document, no merge with the previous value
func (s *DocumentStore[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.path, v); err != nil {
		return errors.WithMessage(err, "save document")
	}
	return nil
}
