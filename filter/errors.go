package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError reports an expression that failed to parse or type-check.
type CompilationError struct {
	Expression string
	// Column is 1-based, zero when unknown.
	Column  int
	Message string
	Err     error
}

func (e *CompilationError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("filter %q: column %d: %s", e.Expression, e.Column, e.Message)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Message)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError reports a filter that failed at run time on one item,
// usually a helper called with a field of the wrong type.
type EvaluationError struct {
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating filter %q: %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func compilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{Expression: expression, Message: err.Error(), Err: err}
	if fe := (*file.Error)(nil); errors.As(err, &fe) {
		ce.Message = fe.Message
		ce.Column = fe.Column + 1
	}
	return ce
}
