package board

import (
	"errors"
	"fmt"
	"strings"

	"signalnoise/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrIDGenerationFailed = errors.New("no unique id after repeated attempts")
)

// NotFoundError reports an unknown column, or a task id absent from a column.
type NotFoundError struct {
	Column models.Column
	TaskID string
}

func (e *NotFoundError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("invalid column %q", string(e.Column))
	}
	return fmt.Sprintf("task %s not found in %s", e.TaskID, e.Column)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports rejected input. For a bulk reorder, the id lists
// say exactly which ids were missing, unexpected, or repeated.
type ValidationError struct {
	Msg        string
	Missing    []string
	Extra      []string
	Duplicates []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)

	writeIDs := func(label string, ids []string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "; %s: %s", label, strings.Join(ids, ", "))
	}
	writeIDs("missing", e.Missing)
	writeIDs("extra", e.Extra)
	writeIDs("duplicate", e.Duplicates)

	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError reports a durable-storage failure. The in-memory change
// that preceded it has been kept.
type PersistenceError struct {
	Op  string // "save", "load" or "erase"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s tasks: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

func columnNotFound(c models.Column) error {
	return &NotFoundError{Column: c}
}

func taskNotFound(c models.Column, id string) error {
	return &NotFoundError{Column: c, TaskID: id}
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
