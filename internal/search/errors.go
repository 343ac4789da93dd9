package search

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable marks a vector or graph backend that could not be
	// reached. Callers may retry; the ranker never swallows it.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDocumentNotResolvable marks a result referencing a document that is
	// no longer present in the relational store. Recovered locally by
	// dropping the entry.
	ErrDocumentNotResolvable = errors.New("document not resolvable")
)

// StorageError wraps a backend failure so errors.Is(err, ErrStorageUnavailable)
// holds while the backend name and cause stay visible.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ErrStorageUnavailable.Error()
	}
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func storageErr(backend string, err error) error {
	return &StorageError{Backend: backend, Err: err}
}
