package fxmanifest

import "fmt"

// ReadError is returned when the manifest file is missing or can't be read
type ReadError struct {
	Path string
	Err  error
}

var _ error = (*ReadError)(nil)

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SyntaxError describes a statement the manifest parser does not accept
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

var _ error = (*SyntaxError)(nil)

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

func syntaxErrorf(file string, line, col int, format string, args ...interface{}) error {
	return &SyntaxError{
		File:   file,
		Line:   line,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}
