package observable

import "errors"

// Sentinel errors for observable collections.
var (
	// ErrKeyNotFound is returned when a key is not in a dictionary.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned when a bulk operation receives a nil
	// collection argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange is returned when an index is outside a list.
	ErrIndexOutOfRange = errors.New("index out of range")
)
