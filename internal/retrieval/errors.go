package retrieval

import "fmt"

// RetrievalError wraps failures while fetching candidates from the
// vector index: unreachable index, timeout, or malformed records. It is
// surfaced to the caller so a degenerate retrieval never turns into a
// confidently wrong answer downstream.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ScoringError indicates a contract violation in the scoring inputs,
// such as a candidate without an id. It points at a data-integrity
// problem in the ingestion pipeline rather than bad user input.
type ScoringError struct {
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring: %s", e.Reason)
}
