package core

import (
	"fmt"
	"sort"
	"strings"
)

// AuthError means no owner identity could be resolved. Every operation
// fails closed on it: there is no public or shared scope to fall back to.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "user not authenticated"
	}
	return e.Reason
}

// ValidationError collects field constraint violations. It never carries a
// partial mutation: when returned, nothing was written.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation error"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation error: %s", strings.Join(names, ", "))
}

// NotFoundError means the targeted id does not resolve to a record owned by
// the caller. Another owner's record and a nonexistent record are reported
// identically so ids never leak across owners.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// DependencyError wraps a datastore or transport failure. The engine does
// not retry; it surfaces the underlying message to the caller.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
