package model

import "errors"

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrUnknownType    = errors.New("unknown entity type")
	ErrEmptyPatch     = errors.New("patch contains no fields")
	ErrJobNotFound    = errors.New("import job not found")

	// ErrWorkbookParse marks a structurally invalid upload. It is the only
	// failure of the import pipeline that propagates as a Go error.
	ErrWorkbookParse = errors.New("workbook could not be parsed")
)
