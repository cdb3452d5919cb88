package completion

import "fmt"

// CompletionError wraps any transport failure, timeout, non-success response
// or malformed output from the external completion service. Callers at the
// route boundary fold it into the fixed fallback reply; it never reaches the
// end user verbatim.
type CompletionError struct {
	Op  string
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion %s: %v", e.Op, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
