package retrieval

import "fmt"

// Kind classifies Retrieval Orchestrator failures per spec.md §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindTimeout
)

// ArgumentError is returned for an invalid query or option value (spec.md
// §4.8 step 1, §8 boundary behaviors).
type ArgumentError struct {
	Op  string
	Msg string
}

func (e *ArgumentError) Error() string { return fmt.Sprintf("retrieval: %s: %s", e.Op, e.Msg) }

// TimeoutError is returned when no channel produced results before the
// caller's deadline (spec.md §5 "Cancellation & timeouts").
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("retrieval: %s: timed out", e.Op) }

func argErr(op, msg string) *ArgumentError { return &ArgumentError{Op: op, Msg: msg} }
