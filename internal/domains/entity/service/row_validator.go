package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"catalog-backend/internal/domains/entity/model"
	schemaModel "catalog-backend/internal/domains/schema/model"

	"github.com/google/uuid"
)

// maxImportRows caps one upload; bigger files are rejected structurally.
const maxImportRows = 1000

const dateLayout = "2006-01-02"

var (
	truthyValues = map[string]bool{"true": true, "yes": true, "1": true}
	falsyValues  = map[string]bool{"false": true, "no": true, "0": true}
)

// RowValidator classifies raw sheet rows into creates, updates, errors and
// warnings against a type schema registry and a snapshot of persisted
// entities. Rows are validated independently: one bad row never changes the
// classification of its siblings.
type RowValidator struct {
	registry    *schemaModel.Registry
	existing    map[string]*model.Entity // persisted entities keyed by id string
	defaultType string                   // used when the sheet has no type column
}

func NewRowValidator(registry *schemaModel.Registry, existing map[string]*model.Entity, defaultType string) *RowValidator {
	return &RowValidator{
		registry:    registry,
		existing:    existing,
		defaultType: defaultType,
	}
}

// Validate never fails; every problem accumulates into the report.
func (v *RowValidator) Validate(sheet *model.SheetData) *model.ImportReport {
	report := &model.ImportReport{TotalRows: len(sheet.Rows)}

	if structural := v.checkStructure(sheet); len(structural) > 0 {
		report.Errors = structural
		return report
	}

	report.Warnings = v.columnWarnings(sheet)

	// Ids declared anywhere in the file, for order-independent parent
	// references. First occurrence wins; duplicates error per row below.
	declaredIDs := make(map[string]int)
	for _, row := range sheet.Rows {
		id := row.Cell(model.ColID)
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, seen := declaredIDs[id]; !seen {
			declaredIDs[id] = row.Index
		}
	}

	seenIDs := make(map[string]int)
	for _, row := range sheet.Rows {
		if row.IsBlank() {
			report.Skipped++
			continue
		}

		parsed, rowErrs, warns := v.validateRow(sheet, row, declaredIDs, seenIDs)
		report.Warnings = append(report.Warnings, warns...)
		if len(rowErrs) > 0 {
			report.Errors = append(report.Errors, rowErrs...)
			continue
		}

		if parsed.IsUpdate() {
			report.Updates = append(report.Updates, *parsed)
		} else {
			report.Creates = append(report.Creates, *parsed)
		}
	}

	v.rejectParentCycles(report)
	return report
}

// checkStructure runs the pre-checks that abort validation outright.
func (v *RowValidator) checkStructure(sheet *model.SheetData) []model.RowError {
	var errs []model.RowError

	if len(sheet.Rows) == 0 {
		errs = append(errs, model.RowError{Field: "file", Message: "file has no data rows"})
		return errs
	}
	if len(sheet.Rows) > maxImportRows {
		errs = append(errs, model.RowError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds %d rows limit", maxImportRows),
		})
	}
	if !sheet.HasColumn(model.ColName) {
		errs = append(errs, model.RowError{Field: model.ColName, Message: "required column is missing"})
	}
	if !sheet.HasColumn(model.ColType) && v.defaultType == "" {
		errs = append(errs, model.RowError{
			Field:   model.ColType,
			Message: "required column is missing and no entity type was preselected",
		})
	}
	return errs
}

// columnWarnings flags headers that map to nothing: not a core column, not
// a lifecycle phase, not an attribute key of any registered type. They are
// ignored for payload construction.
func (v *RowValidator) columnWarnings(sheet *model.SheetData) []model.RowWarning {
	var warns []model.RowWarning
	for _, col := range sheet.Columns {
		if col == "" || v.recognizedColumn(col) {
			continue
		}
		warns = append(warns, model.RowWarning{
			Column:  col,
			Message: "unrecognized column, values will be ignored",
		})
	}
	return warns
}

func (v *RowValidator) recognizedColumn(col string) bool {
	if model.CoreColumns[col] {
		return true
	}
	if phase, ok := strings.CutPrefix(col, model.LifecycleColPrefix); ok {
		for _, p := range model.LifecyclePhases {
			if p == phase {
				return true
			}
		}
		return false
	}
	if key, ok := strings.CutPrefix(col, model.AttrColPrefix); ok {
		return v.registry.KnownFieldKey(key)
	}
	return false
}

func (v *RowValidator) validateRow(
	sheet *model.SheetData,
	row model.RawRow,
	declaredIDs map[string]int,
	seenIDs map[string]int,
) (*model.ParsedRow, []model.RowError, []model.RowWarning) {
	var errs []model.RowError
	var warns []model.RowWarning

	addErr := func(field, value, msg string) {
		errs = append(errs, model.RowError{Row: row.Index, Field: field, Value: value, Message: msg})
	}

	parsed := &model.ParsedRow{RowIndex: row.Index}

	// 1. Name
	name := row.Cell(model.ColName)
	if name == "" {
		addErr(model.ColName, "", "required field")
	}
	parsed.Data.Name = name

	// 2. Type: the row's own column wins over the preselected default.
	typeKey := row.Cell(model.ColType)
	if typeKey == "" {
		typeKey = v.defaultType
	}
	entityType, typeKnown := v.registry.Type(typeKey)
	if !typeKnown || entityType.Hidden {
		addErr(model.ColType, typeKey, fmt.Sprintf("unknown entity type %q", typeKey))
		typeKnown = false
	}
	parsed.Type = typeKey

	// 3. Id: updates must match a persisted entity of the same type; a
	// well-formed id with no persisted match is a file-local id on a create
	// (other rows may reference it via parent_id).
	if id := row.Cell(model.ColID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			addErr(model.ColID, id, "id is not a valid UUID")
		} else if firstRow, dup := seenIDs[id]; dup {
			addErr(model.ColID, id, fmt.Sprintf("duplicate id (also at row %d)", firstRow))
		} else {
			seenIDs[id] = row.Index
			parsed.FileID = id
			if existing, ok := v.existing[id]; ok {
				if typeKnown && existing.Type != typeKey {
					addErr(model.ColType, typeKey,
						fmt.Sprintf("type mismatch: existing entity has type %q", existing.Type))
				} else {
					parsed.Existing = existing
				}
			}
		}
	}

	// 4. Parent reference: a persisted entity or another row in this file.
	// An explicitly empty cell clears the parent on update.
	if sheet.HasColumn(model.ColParentID) {
		if parent := row.Cell(model.ColParentID); parent == "" {
			parsed.ParentCleared = true
		} else if _, err := uuid.Parse(parent); err != nil {
			addErr(model.ColParentID, parent, "parent_id is not a valid UUID")
		} else if parent == row.Cell(model.ColID) {
			addErr(model.ColParentID, parent, "entity cannot be its own parent")
		} else {
			_, persisted := v.existing[parent]
			_, inFile := declaredIDs[parent]
			if !persisted && !inFile {
				addErr(model.ColParentID, parent, "parent_id matches no existing entity and no row in this file")
			} else {
				parsed.ParentID = parent
			}
		}
	}

	// 5. Status
	if status := strings.ToLower(row.Cell(model.ColStatus)); status != "" {
		valid := false
		for _, s := range model.ValidStatuses {
			if s == status {
				valid = true
				break
			}
		}
		if !valid {
			addErr(model.ColStatus, row.Cell(model.ColStatus), "status must be draft, active, or archived")
		} else {
			parsed.Data.Status = &status
		}
	}

	// 6. Lifecycle dates. Each bad column errors on its own; the others are
	// still evaluated.
	for _, phase := range model.LifecyclePhases {
		col := model.LifecycleColumn(phase)
		val := row.Cell(col)
		if val == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, val); err != nil {
			addErr(col, val, "date must be in YYYY-MM-DD format")
			continue
		}
		if parsed.Data.Lifecycle == nil {
			parsed.Data.Lifecycle = make(map[string]string)
		}
		parsed.Data.Lifecycle[phase] = val
	}

	// 7. Typed attributes, driven by the resolved type's field schema.
	if typeKnown {
		attrErrs, attrWarns := v.validateAttributes(sheet, row, entityType, parsed)
		errs = append(errs, attrErrs...)
		warns = append(warns, attrWarns...)
	}

	// 8. Remaining core columns. A present-but-empty cell is an explicit
	// empty (clears the field on update); an absent column is no opinion.
	parsed.Data.Description = optionalCell(sheet, row, model.ColDescription)
	parsed.Data.Subtype = optionalCell(sheet, row, model.ColSubtype)
	parsed.Data.ExternalID = optionalCell(sheet, row, model.ColExternalID)
	parsed.Data.Alias = optionalCell(sheet, row, model.ColAlias)

	return parsed, errs, warns
}

func (v *RowValidator) validateAttributes(
	sheet *model.SheetData,
	row model.RawRow,
	entityType schemaModel.EntityType,
	parsed *model.ParsedRow,
) ([]model.RowError, []model.RowWarning) {
	var errs []model.RowError
	var warns []model.RowWarning

	for _, field := range entityType.Fields {
		col := model.AttrColumn(field.Key)
		raw := ""
		if sheet.HasColumn(col) {
			raw = row.Cell(col)
		}

		if raw == "" {
			// Required-ness binds creates only; updates stay partial. An
			// absent column counts the same as an empty cell, so omitting a
			// required column cannot smuggle in incomplete entities.
			if field.Required && !parsed.IsUpdate() {
				errs = append(errs, model.RowError{
					Row: row.Index, Field: col,
					Message: fmt.Sprintf("required field %q is empty", field.Key),
				})
			}
			continue
		}

		if field.ReadOnly {
			warns = append(warns, model.RowWarning{
				Row: row.Index, Column: col,
				Message: fmt.Sprintf("field %q is read-only, value ignored", field.Key),
			})
			continue
		}

		value, err := parseFieldValue(field, raw)
		if err != nil {
			errs = append(errs, model.RowError{
				Row: row.Index, Field: col, Value: raw, Message: err.Error(),
			})
			continue
		}

		if parsed.Data.Attributes == nil {
			parsed.Data.Attributes = make(map[string]any)
		}
		parsed.Data.Attributes[field.Key] = value
	}

	return errs, warns
}

// parseFieldValue is the per-type validation dispatch: one pure function per
// field-type tag of the closed set.
func parseFieldValue(field schemaModel.FieldDefinition, raw string) (any, error) {
	switch field.Type {
	case schemaModel.FieldTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, fmt.Errorf("value is not a finite number")
		}
		return n, nil

	case schemaModel.FieldTypeBoolean:
		lowered := strings.ToLower(raw)
		if truthyValues[lowered] {
			return true, nil
		}
		if falsyValues[lowered] {
			return false, nil
		}
		return nil, fmt.Errorf("value must be one of true/yes/1 or false/no/0")

	case schemaModel.FieldTypeDate:
		if _, err := time.Parse(dateLayout, raw); err != nil {
			return nil, fmt.Errorf("date must be in YYYY-MM-DD format")
		}
		return raw, nil

	case schemaModel.FieldTypeSingleSelect:
		if len(field.Options) > 0 && !field.HasOption(raw) {
			return nil, fmt.Errorf("value is not a valid option for %q", field.Key)
		}
		return raw, nil

	case schemaModel.FieldTypeMultipleSelect:
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if len(field.Options) > 0 && !field.HasOption(p) {
				return nil, fmt.Errorf("%q is not a valid option for %q", p, field.Key)
			}
			values = append(values, p)
		}
		return values, nil

	default: // text
		return raw, nil
	}
}

// rejectParentCycles turns cyclic parent chains among creates into hard
// errors. The source this replaces silently emitted a wrong-looking order;
// an explicit error is the one behavior a user can act on.
func (v *RowValidator) rejectParentCycles(report *model.ImportReport) {
	byID := make(map[string]int, len(report.Creates))
	for i, row := range report.Creates {
		if row.FileID != "" {
			byID[row.FileID] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(report.Creates))
	inCycle := make(map[int]bool)

	var stack []int
	var visit func(i int)
	visit = func(i int) {
		state[i] = visiting
		stack = append(stack, i)
		if p := report.Creates[i].ParentID; p != "" {
			if j, ok := byID[p]; ok {
				switch state[j] {
				case unvisited:
					visit(j)
				case visiting:
					for k := len(stack) - 1; k >= 0; k-- {
						inCycle[stack[k]] = true
						if stack[k] == j {
							break
						}
					}
				}
			}
		}
		state[i] = done
		stack = stack[:len(stack)-1]
	}
	for i := range report.Creates {
		if state[i] == unvisited {
			visit(i)
		}
	}

	if len(inCycle) == 0 {
		return
	}

	kept := report.Creates[:0]
	for i, row := range report.Creates {
		if inCycle[i] {
			report.Errors = append(report.Errors, model.RowError{
				Row:     row.RowIndex,
				Field:   model.ColParentID,
				Value:   row.ParentID,
				Message: "circular parent reference among imported rows",
			})
			continue
		}
		kept = append(kept, row)
	}
	report.Creates = kept
}

func optionalCell(sheet *model.SheetData, row model.RawRow, col string) *string {
	if !sheet.HasColumn(col) {
		return nil
	}
	val := row.Cell(col)
	return &val
}
