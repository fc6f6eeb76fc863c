package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail   = errors.New("invalid email")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNotFound       = errors.New("employee not found")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a failure reported by the repository. Unwrap returns
// the repository error unchanged, so db.IsDuplicateKey and friends still
// work on it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) Unwrap() error        { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// ImportError reports which item of an import batch failed. Row is
// 1-based.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
