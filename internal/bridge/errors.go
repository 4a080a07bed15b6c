package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from an input table.
// Fatal: the pipeline aborts before any merge when raised.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required column missing: %s", e.Table, strings.Join(e.Missing, ", "))
}

// NewSchemaError builds a SchemaError for the named table and columns.
func NewSchemaError(table string, missing ...string) *SchemaError {
	return &SchemaError{Table: table, Missing: missing}
}

// IsSchemaError returns true if the error (or any error in its chain)
// is a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// SequencingError reports that the canonical sector list could not be
// loaded or parsed. Fatal: downstream positional alignment is undefined
// without it.
type SequencingError struct {
	Path string
	Err  error
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("canonical sector list %s: %v", e.Path, e.Err)
}

func (e *SequencingError) Unwrap() error {
	return e.Err
}

// NewSequencingError wraps err as a sequencing failure for the list at path.
func NewSequencingError(path string, err error) *SequencingError {
	return &SequencingError{Path: path, Err: err}
}

// IsSequencingError returns true if the error (or any error in its
// chain) is a SequencingError.
func IsSequencingError(err error) bool {
	var se *SequencingError
	return errors.As(err, &se)
}
