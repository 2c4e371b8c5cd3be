package models

import "fmt"

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// MissingColumnError is returned when a reading table lacks a required column
type MissingColumnError struct {
	Source string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing column %q", e.Source, e.Column)
}

// IsTransient returns false, the input has to be fixed
func (e *MissingColumnError) IsTransient() bool {
	return false
}

// UnparsableTimestampError is returned when a row's timestamp is not epoch seconds
type UnparsableTimestampError struct {
	Source string
	Row    int
	Value  string
}

func (e *UnparsableTimestampError) Error() string {
	return fmt.Sprintf("%s: row %d: unparsable timestamp %q", e.Source, e.Row, e.Value)
}

// IsTransient returns false, the input has to be fixed
func (e *UnparsableTimestampError) IsTransient() bool {
	return false
}

// EmptyInputError is returned when a source yields no rows and empty input is not allowed
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no readings", e.Source)
}

// IsTransient returns true: a database source may be populated later
func (e *EmptyInputError) IsTransient() bool {
	return true
}
