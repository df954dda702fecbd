package session

import "errors"

var (
	// ErrBusy is returned for object and page mutations while a page switch
	// is in flight.
	ErrBusy = errors.New("session: navigation in progress")

	// ErrObjectNotFound is returned when no user object has the given ID.
	ErrObjectNotFound = errors.New("session: object not found")

	// ErrNotOpen is returned before a document has been opened or after Close.
	ErrNotOpen = errors.New("session: no open document")

	// ErrRunNotFound is returned for a text run index outside the active page.
	ErrRunNotFound = errors.New("session: text run not found")

	// ErrUnknownTool is returned for a tool name outside the tool set.
	ErrUnknownTool = errors.New("session: unknown tool")

	// ErrUnsupportedKind is returned when AddTool is asked for a kind that has
	// its own operation.
	ErrUnsupportedKind = errors.New("session: kind cannot be added directly")

	// ErrInvalidOptions is returned when tool options are missing a value the
	// kind requires.
	ErrInvalidOptions = errors.New("session: invalid options")

	// ErrVersionNotFound is returned when restoring a version that does not exist.
	ErrVersionNotFound = errors.New("session: version not found")

	// ErrVersionNotSaved is returned when the version store rejected a save.
	ErrVersionNotSaved = errors.New("session: version not saved")

	// ErrNothingToUndo is returned by UndoPageOperation with no snapshots.
	ErrNothingToUndo = errors.New("session: no page operation to undo")
)
