package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced identifier does not resolve
// to any node in the store.
var ErrNotFound = errors.New("node not found")

// BadRequestError reports a violated structural precondition, such as
// attaching a tag to a non-use-case parent. Code is a stable diagnostic
// code (component prefix plus sub-code, e.g. "TAGC-ADDU1") kept constant
// across releases for traceability.
type BadRequestError struct {
	Code string
	Msg  string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// QueryError wraps a fault in the underlying store operation itself.
// It is always propagated, never swallowed.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("store query failed during %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// MalformedNodeError reports a node read back from the store that does
// not match the expected shape for its type. During bulk enumeration it
// is handled per-item: logged and skipped, never fatal to the batch.
type MalformedNodeError struct {
	NodeID string
	Kind   string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed %s node %s: %s", e.Kind, e.NodeID, e.Reason)
}
