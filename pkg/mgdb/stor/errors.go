package stor

import (
	"errors"
)

// Kind classifies store errors for callers that map them to responses.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
)

// Error is a store failure with a detail message fit for end users. The
// detail wording is relied on by existing clients.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

var (
	ErrActivityNotFound       = &Error{Kind: KindNotFound, Detail: "Activity not found"}
	ErrParticipantNotFound    = &Error{Kind: KindNotFound, Detail: "Student not found in this activity"}
	ErrParticipantNotSignedUp = &Error{Kind: KindNotFound, Detail: "Student not found in any activity"}
	ErrAlreadySignedUp        = &Error{Kind: KindConflict, Detail: "Student is already signed up"}
	ErrActivityFull           = &Error{Kind: KindConflict, Detail: "Activity is full"}
)

// AsError returns the store Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var storErr *Error
	if errors.As(err, &storErr) {
		return storErr, true
	}

	return nil, false
}

func IsNotFound(err error) bool {
	storErr, ok := AsError(err)
	return ok && storErr.Kind == KindNotFound
}

func IsConflict(err error) bool {
	storErr, ok := AsError(err)
	return ok && storErr.Kind == KindConflict
}
