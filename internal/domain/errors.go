package domain

import "errors"

var (
	// ErrUnauthenticated means no valid session was presented.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrInvalidPayload means a required field was missing or empty.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrNotFound means the record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the (user, article) pair is already bookmarked.
	ErrConflict = errors.New("already bookmarked")
	// ErrInvalidLink means a magic-link token is unknown, used or expired.
	ErrInvalidLink = errors.New("invalid or expired login link")
)

// StorageError wraps a persistence backend failure.
// Its message is the backend's, passed through uninterpreted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage error"
	}
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it is nil or already a StorageError.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
