package model

import (
	"fmt"
	"strings"
	"time"
)

// ========================================
// SHEET MODEL
// ========================================

// Column names recognized in uploaded sheets. Headers are matched
// case-insensitively; the extractor lowercases them on the way in.
const (
	ColID          = "id"
	ColType        = "type"
	ColName        = "name"
	ColDescription = "description"
	ColSubtype     = "subtype"
	ColParentID    = "parent_id"
	ColExternalID  = "external_id"
	ColAlias       = "alias"
	ColStatus      = "status"

	LifecycleColPrefix = "lifecycle_"
	AttrColPrefix      = "attr_"
)

// CoreColumns is the fixed (non-lifecycle, non-attribute) column set.
var CoreColumns = map[string]bool{
	ColID:          true,
	ColType:        true,
	ColName:        true,
	ColDescription: true,
	ColSubtype:     true,
	ColParentID:    true,
	ColExternalID:  true,
	ColAlias:       true,
	ColStatus:      true,
}

// LifecycleColumn returns the sheet column name for a lifecycle phase.
func LifecycleColumn(phase string) string {
	return LifecycleColPrefix + phase
}

// AttrColumn returns the sheet column name for a schema field key.
func AttrColumn(fieldKey string) string {
	return AttrColPrefix + fieldKey
}

// RawRow is one data row of the first worksheet, keyed by lowercased header.
// Index is the 1-based sheet row number (row 1 is the header, so the first
// data row is 2); it appears in every diagnostic.
type RawRow struct {
	Index int
	Cells map[string]string
}

// Cell returns the trimmed value of a column, "" when absent.
func (r RawRow) Cell(col string) string {
	return strings.TrimSpace(r.Cells[col])
}

// IsBlank reports whether every cell of the row is empty.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// SheetData is the extractor output: the header as seen in row 1 plus all
// data rows in sheet order.
type SheetData struct {
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the sheet declared the given (lowercased) header.
func (s *SheetData) HasColumn(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ========================================
// PARSED ROW MODEL
// ========================================

// EntityPayload is the normalized projection of one sheet row. Core fields
// other than Name are pointers: nil means the column was absent from the
// file (no opinion), while a pointer to "" means the cell was explicitly
// empty and should clear the field on update.
type EntityPayload struct {
	Name        string
	Description *string
	Subtype     *string
	ExternalID  *string
	Alias       *string
	Status      *string
	Lifecycle   map[string]string
	Attributes  map[string]any
}

// ParsedRow is a validated row, classified as either a create or an update.
type ParsedRow struct {
	RowIndex int
	FileID   string // value of the id column; file-local on creates
	Type     string
	Data     EntityPayload
	ParentID string // raw parent reference (persisted id or another row's FileID)
	// ParentCleared marks an explicitly empty parent_id cell: on update the
	// persisted parent is removed. Meaningless when ParentID is set.
	ParentCleared bool
	Existing      *Entity // snapshot of the persisted entity; nil on creates
}

// IsUpdate reports whether the row targets an existing entity.
func (r *ParsedRow) IsUpdate() bool {
	return r.Existing != nil
}

// ========================================
// IMPORT REPORT
// ========================================

// RowError is a blocking validation problem; the offending row is excluded
// from both buckets.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"error"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// RowWarning is informational only and never blocks an import.
type RowWarning struct {
	Row     int    `json:"row,omitempty"` // 0 for file-level warnings
	Column  string `json:"column"`
	Message string `json:"warning"`
}

// ImportReport is the validator output, consumed by the orderer and the
// executor. It is never mutated after validation returns.
type ImportReport struct {
	TotalRows int          `json:"total_rows"`
	Skipped   int          `json:"skipped"`
	Errors    []RowError   `json:"errors,omitempty"`
	Warnings  []RowWarning `json:"warnings,omitempty"`
	Creates   []ParsedRow  `json:"-"`
	Updates   []ParsedRow  `json:"-"`
}

// ========================================
// IMPORT RESULT
// ========================================

// FailedRow records one isolated execution failure.
type FailedRow struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes one execution run.
// Created + Updated + Failed always equals len(creates) + len(updates).
type ImportResult struct {
	Created       int         `json:"created"`
	Updated       int         `json:"updated"`
	Failed        int         `json:"failed"`
	FailedDetails []FailedRow `json:"failed_details,omitempty"`
}

// ========================================
// IMPORT JOB (async mode)
// ========================================

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ImportJob tracks one async import for status polling. The workbook is
// stashed in object storage under FileKey until the worker picks it up.
type ImportJob struct {
	ID           string     `json:"id" db:"id"`
	FileName     string     `json:"file_name" db:"file_name"`
	FileKey      string     `json:"-" db:"file_key"`
	SelectedType string     `json:"selected_type,omitempty" db:"selected_type"`
	Status       string     `json:"status" db:"status"`
	TotalRows    int        `json:"total_rows" db:"total_rows"`
	CreatedRows  int        `json:"created_rows" db:"created_rows"`
	UpdatedRows  int        `json:"updated_rows" db:"updated_rows"`
	FailedRows   int        `json:"failed_rows" db:"failed_rows"`
	Errors       []byte     `json:"errors,omitempty" db:"errors"` // JSONB []RowError
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ImportJobPayload is the asynq task payload for one queued import.
type ImportJobPayload struct {
	JobID string `json:"job_id"`
}
