package mutator

import (
	"errors"
	"fmt"

	"github.com/plotdeck/plotdeck/command"
)

// TargetKind names what a command failed to locate.
type TargetKind string

const (
	TargetChart TargetKind = "chart"
	TargetPage  TargetKind = "page"
)

// TargetNotFoundError reports a mutating command whose target does not
// exist in the document. It is benign: the caller surfaces it as a
// no_matching_chart outcome rather than a system failure.
type TargetNotFoundError struct {
	Kind TargetKind
	ID   string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("no %s with id %q in the document", e.Kind, e.ID)
}

// RejectReason maps the miss onto the grammar's reject-reason set.
func (e *TargetNotFoundError) RejectReason() command.RejectReason {
	return command.RejectNoMatchingChart
}

// DuplicateIDError reports an add command whose new identifier already
// exists. Also benign; applying it would break the uniqueness invariant.
type DuplicateIDError struct {
	Kind TargetKind
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("a %s with id %q already exists", e.Kind, e.ID)
}

// RejectReason maps the conflict onto the grammar's reject-reason set.
func (e *DuplicateIDError) RejectReason() command.RejectReason {
	return command.RejectImpossibleAction
}

// IsBenign reports whether the apply error is a user-level miss rather
// than a system failure.
func IsBenign(err error) bool {
	var notFound *TargetNotFoundError
	var dup *DuplicateIDError
	return errors.As(err, &notFound) || errors.As(err, &dup)
}
