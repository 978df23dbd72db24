package datasets

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// ErrUnknownKey is matched by every UnknownKeyError.
var ErrUnknownKey = errors.New("unknown key")

// ParseError reports a malformed corpus file. Line is 1-based and zero for
// whole-file formats such as JSON.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", location, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", location, e.Msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// UnknownKeyError is returned by strict lookups for keys missing from their map.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q", e.Key)
}

func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}
