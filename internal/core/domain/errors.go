package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrConsistency            = errors.New("consistency violation")
	ErrUnsupportedMessageKind = errors.New("unsupported message kind")
	ErrInvalid                = errors.New("invalid")
)

// NotFoundError reports an id that is absent from a collection.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConsistencyError reports a broken invariant between the ordered ids of a
// collection and its lookup map.
type ConsistencyError struct {
	Collection string
	ID         string
	Reason     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Collection, e.Reason, e.ID)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }

type UnsupportedMessageKindError struct {
	Kind string
}

func (e *UnsupportedMessageKindError) Error() string {
	return fmt.Sprintf("unsupported message kind %q", e.Kind)
}

func (e *UnsupportedMessageKindError) Is(target error) bool {
	return target == ErrUnsupportedMessageKind
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
