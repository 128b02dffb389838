package idl

import "fmt"

// ParseError is one recoverable parse failure, with enough position
// information to report a useful diagnostic.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseErrors collects every ParseError produced by one parse attempt.
type ParseErrors []*ParseError

func (errs ParseErrors) Error() string {
	if len(errs) == 0 {
		return "no errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more error(s))", errs[0].Error(), len(errs)-1)
}
