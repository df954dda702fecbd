package annotation

import "errors"

var (
	// ErrUnknownKind is returned when a kind, tag or primitive cannot be resolved.
	ErrUnknownKind = errors.New("annotation: unknown kind")

	// ErrNotDuplicable is returned when duplicating a text replacement, which
	// would desynchronize it from its source mask.
	ErrNotDuplicable = errors.New("annotation: object cannot be duplicated")

	// ErrInvalidDocument is returned when serialized page state is not a
	// versioned object document.
	ErrInvalidDocument = errors.New("annotation: invalid document")
)
