package resolution

import "fmt"

// ValidationError reports missing or malformed operator input. It is
// recoverable: the operator fixes the input and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateError reports an action attempted from a state that does not
// allow it, usually because another staff member got there first.
type StateError struct {
	Entity    string
	Current   string
	Attempted string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is %s, cannot %s: already handled", e.Entity, e.Current, e.Attempted)
}

// MutationError reports a rejected or failed data store write. The
// local snapshot is left untouched; the operator may retry.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
