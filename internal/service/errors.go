package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the task and alert services. Match them with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrNotOwner             = errors.New("not owner")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidDueDate       = errors.New("invalid due date")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrMissingDueDate       = errors.New("task has no due date")
	ErrTaskExpired          = errors.New("task expired")
	ErrMissingLeadTime      = errors.New("missing lead time")
	ErrInvalidLeadTime      = errors.New("invalid lead time format")
	ErrDuplicateAlert       = errors.New("duplicate alert")
	ErrTaskHasActiveAlerts  = errors.New("task has active alerts")
	ErrEmailInUse           = errors.New("email already in use")
)

// Error carries a kind and a detail message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsBusiness reports whether err is one of the service error kinds.
func IsBusiness(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsUserNotFound reports whether err is a NotFound about the requesting user
// rather than a task.
func IsUserNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && errors.Is(e.Kind, ErrNotFound) && strings.HasPrefix(e.Msg, "user ")
}
