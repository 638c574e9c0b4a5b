package storage

import "errors"

// NotFoundError is returned when an exchange doesn't exist in the store.
type NotFoundError struct {
	Hash string
}

func (e NotFoundError) Error() string {
	if e.Hash == "" {
		return "exchange not found"
	}

	return "exchange not found: " + e.Hash
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// ErrNilExchange is returned when a nil exchange is passed to Upsert.
var ErrNilExchange = errors.New("cannot store nil exchange")
