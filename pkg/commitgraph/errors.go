package commitgraph

import (
	"fmt"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
)

// Reason explains why a parent reference did not resolve.
type Reason string

const (
	// ReasonSelf means the commit names itself as a parent.
	ReasonSelf Reason = "self"
	// ReasonForward means the parent is declared later in the snapshot.
	ReasonForward Reason = "forward"
	// ReasonUnknown means no commit in the snapshot has that key.
	ReasonUnknown Reason = "unknown"
)

// DanglingReferenceError reports a parent reference that does not resolve to
// a commit declared strictly earlier. Key is the offending commit, Ref the
// key it referenced and Field either "parent" or "parent2".
type DanglingReferenceError struct {
	Key    string
	Ref    string
	Field  string
	Reason Reason
}

func (e *DanglingReferenceError) Error() string {
	switch e.Reason {
	case ReasonSelf:
		return fmt.Sprintf("commit %q: %s references itself", e.Key, e.Field)
	case ReasonForward:
		return fmt.Sprintf("commit %q: %s %q is declared later", e.Key, e.Field, e.Ref)
	}
	return fmt.Sprintf("commit %q: %s %q does not exist", e.Key, e.Field, e.Ref)
}

// Code maps the error onto the DANGLING_REFERENCE code.
func (e *DanglingReferenceError) Code() errs.Code { return errs.ErrCodeDanglingReference }
