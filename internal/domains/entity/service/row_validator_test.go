package service

import (
	"fmt"
	"testing"

	"catalog-backend/internal/domains/entity/model"
	schemaModel "catalog-backend/internal/domains/schema/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *schemaModel.Registry {
	return schemaModel.NewRegistry([]schemaModel.EntityType{
		{
			Key:   "application",
			Label: "Application",
			Fields: []schemaModel.FieldDefinition{
				{Key: "cost", Type: schemaModel.FieldTypeNumber},
				{Key: "hosted", Type: schemaModel.FieldTypeBoolean},
				{Key: "go_live", Type: schemaModel.FieldTypeDate},
				{Key: "criticality", Type: schemaModel.FieldTypeSingleSelect, Options: []schemaModel.FieldOption{
					{Key: "high", Label: "High"}, {Key: "low", Label: "Low"},
				}},
				{Key: "tags", Type: schemaModel.FieldTypeMultipleSelect, Options: []schemaModel.FieldOption{
					{Key: "web", Label: "Web"}, {Key: "mobile", Label: "Mobile"},
				}},
				{Key: "owner", Type: schemaModel.FieldTypeText},
				{Key: "health", Type: schemaModel.FieldTypeText, ReadOnly: true},
			},
		},
		{
			Key:   "initiative",
			Label: "Initiative",
			Fields: []schemaModel.FieldDefinition{
				{Key: "sponsor", Type: schemaModel.FieldTypeText, Required: true},
			},
		},
		{Key: "server", Label: "Server"},
		{Key: "shadow", Label: "Shadow", Hidden: true},
	})
}

// buildSheet assembles SheetData the way the extractor would, rows numbered
// from 2.
func buildSheet(columns []string, rows ...[]string) *model.SheetData {
	sheet := &model.SheetData{Columns: columns}
	for i, r := range rows {
		raw := model.RawRow{Index: i + 2, Cells: make(map[string]string, len(columns))}
		for j, col := range columns {
			if j < len(r) {
				raw.Cells[col] = r[j]
			} else {
				raw.Cells[col] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, raw)
	}
	return sheet
}

func existingEntity(id uuid.UUID, entityType, name string) *model.Entity {
	return &model.Entity{ID: id, Type: entityType, Name: name, Status: model.StatusActive}
}

func TestValidateClassifiesCreatesAndUpdates(t *testing.T) {
	existingID := uuid.New()
	existing := map[string]*model.Entity{
		existingID.String(): existingEntity(existingID, "application", "Billing"),
	}

	sheet := buildSheet(
		[]string{"id", "type", "name"},
		[]string{"", "application", "CRM"},
		[]string{existingID.String(), "application", "Billing v2"},
	)

	report := NewRowValidator(testRegistry(), existing, "").Validate(sheet)

	require.Empty(t, report.Errors)
	require.Len(t, report.Creates, 1)
	require.Len(t, report.Updates, 1)
	assert.Equal(t, "CRM", report.Creates[0].Data.Name)
	assert.Equal(t, existingID.String(), report.Updates[0].FileID)
	assert.True(t, report.Updates[0].IsUpdate())
	assert.Equal(t, 2, report.TotalRows)
}

func TestValidateRowIndependence(t *testing.T) {
	// A bad row never drags its siblings down.
	sheet := buildSheet(
		[]string{"type", "name"},
		[]string{"application", ""},        // missing name
		[]string{"application", "Gateway"}, // fine
		[]string{"mainframe", "Legacy"},    // unknown type
	)

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	require.Len(t, report.Errors, 2)
	require.Len(t, report.Creates, 1)
	assert.Equal(t, "Gateway", report.Creates[0].Data.Name)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, "name", report.Errors[0].Field)
	assert.Equal(t, 4, report.Errors[1].Row)
	assert.Equal(t, "type", report.Errors[1].Field)
}

func TestValidateBlankRowsSkipped(t *testing.T) {
	sheet := buildSheet(
		[]string{"type", "name"},
		[]string{"application", "CRM"},
		[]string{"", ""},
		[]string{"", ""},
	)

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	require.Empty(t, report.Errors)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, report.Creates, 1)
}

func TestValidateStructuralErrors(t *testing.T) {
	v := NewRowValidator(testRegistry(), nil, "")

	t.Run("no data rows", func(t *testing.T) {
		report := v.Validate(&model.SheetData{Columns: []string{"type", "name"}})
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "file", report.Errors[0].Field)
	})

	t.Run("missing name column", func(t *testing.T) {
		report := v.Validate(buildSheet([]string{"type"}, []string{"application"}))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "name", report.Errors[0].Field)
	})

	t.Run("missing type column without preselection", func(t *testing.T) {
		report := v.Validate(buildSheet([]string{"name"}, []string{"CRM"}))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "type", report.Errors[0].Field)
	})

	t.Run("row cap", func(t *testing.T) {
		rows := make([][]string, maxImportRows+1)
		for i := range rows {
			rows[i] = []string{"application", fmt.Sprintf("app-%d", i)}
		}
		report := v.Validate(buildSheet([]string{"type", "name"}, rows...))
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0].Message, "1000")
		assert.Empty(t, report.Creates)
	})
}

func TestValidatePreselectedTypeFallback(t *testing.T) {
	sheet := buildSheet([]string{"name"}, []string{"CRM"})

	report := NewRowValidator(testRegistry(), nil, "application").Validate(sheet)

	require.Empty(t, report.Errors)
	require.Len(t, report.Creates, 1)
	assert.Equal(t, "application", report.Creates[0].Type)
}

func TestValidateRowTypeOverridesPreselection(t *testing.T) {
	sheet := buildSheet(
		[]string{"type", "name"},
		[]string{"server", "db-01"},
		[]string{"", "CRM"},
	)

	report := NewRowValidator(testRegistry(), nil, "application").Validate(sheet)

	require.Empty(t, report.Errors)
	require.Len(t, report.Creates, 2)
	assert.Equal(t, "server", report.Creates[0].Type)
	assert.Equal(t, "application", report.Creates[1].Type)
}

func TestValidateHiddenTypeRejected(t *testing.T) {
	sheet := buildSheet([]string{"type", "name"}, []string{"shadow", "Ghost"})

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "unknown entity type")
}

func TestValidateIDColumn(t *testing.T) {
	existingID := uuid.New()
	existing := map[string]*model.Entity{
		existingID.String(): existingEntity(existingID, "server", "db-01"),
	}
	v := NewRowValidator(testRegistry(), existing, "")

	t.Run("malformed id", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name"},
			[]string{"not-a-uuid", "application", "CRM"},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "id", report.Errors[0].Field)
	})

	t.Run("duplicate id names first occurrence", func(t *testing.T) {
		id := uuid.New().String()
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name"},
			[]string{id, "application", "CRM"},
			[]string{id, "application", "CRM again"},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, 3, report.Errors[0].Row)
		assert.Equal(t, "duplicate id (also at row 2)", report.Errors[0].Message)
		assert.Len(t, report.Creates, 1)
	})

	t.Run("type mismatch on update", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name"},
			[]string{existingID.String(), "application", "db-01"},
		))
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0].Message, `existing entity has type "server"`)
	})

	t.Run("unmatched id is a file-local create", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name"},
			[]string{uuid.New().String(), "application", "CRM"},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Creates, 1)
		assert.False(t, report.Creates[0].IsUpdate())
		assert.NotEmpty(t, report.Creates[0].FileID)
	})
}

func TestValidateParentReferences(t *testing.T) {
	existingID := uuid.New()
	existing := map[string]*model.Entity{
		existingID.String(): existingEntity(existingID, "application", "Suite"),
	}
	v := NewRowValidator(testRegistry(), existing, "")

	t.Run("persisted parent accepted", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"type", "name", "parent_id"},
			[]string{"application", "Module", existingID.String()},
		))
		require.Empty(t, report.Errors)
		assert.Equal(t, existingID.String(), report.Creates[0].ParentID)
	})

	t.Run("parent declared later in file accepted", func(t *testing.T) {
		parentID := uuid.New().String()
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name", "parent_id"},
			[]string{"", "application", "Child", parentID},
			[]string{parentID, "application", "Parent", ""},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Creates, 2)
	})

	t.Run("dangling parent rejected", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"type", "name", "parent_id"},
			[]string{"application", "Orphan", uuid.New().String()},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "parent_id", report.Errors[0].Field)
	})

	t.Run("self parent rejected", func(t *testing.T) {
		id := uuid.New().String()
		report := v.Validate(buildSheet(
			[]string{"id", "type", "name", "parent_id"},
			[]string{id, "application", "Loop", id},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "entity cannot be its own parent", report.Errors[0].Message)
	})

	t.Run("empty cell marks the parent cleared", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"type", "name", "parent_id"},
			[]string{"application", "Standalone", ""},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Creates, 1)
		assert.True(t, report.Creates[0].ParentCleared)
		assert.Empty(t, report.Creates[0].ParentID)
	})

	t.Run("absent column leaves the parent untouched", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"type", "name"},
			[]string{"application", "Standalone"},
		))
		require.Len(t, report.Creates, 1)
		assert.False(t, report.Creates[0].ParentCleared)
	})

	t.Run("malformed parent rejected", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"type", "name", "parent_id"},
			[]string{"application", "CRM", "nope"},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "parent_id is not a valid UUID", report.Errors[0].Message)
	})
}

func TestValidateParentCycleRejected(t *testing.T) {
	a, b, c := uuid.New().String(), uuid.New().String(), uuid.New().String()
	sheet := buildSheet(
		[]string{"id", "type", "name", "parent_id"},
		[]string{a, "application", "A", b},
		[]string{b, "application", "B", a},
		[]string{c, "application", "C", a},
	)

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	// A and B form the cycle; C merely points into it and survives.
	require.Len(t, report.Errors, 2)
	for _, e := range report.Errors {
		assert.Equal(t, "circular parent reference among imported rows", e.Message)
	}
	require.Len(t, report.Creates, 1)
	assert.Equal(t, "C", report.Creates[0].Data.Name)
}

func TestValidateStatus(t *testing.T) {
	v := NewRowValidator(testRegistry(), nil, "")

	report := v.Validate(buildSheet(
		[]string{"type", "name", "status"},
		[]string{"application", "CRM", "Active"},
		[]string{"application", "ERP", "retired"},
	))

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "status", report.Errors[0].Field)
	require.Len(t, report.Creates, 1)
	require.NotNil(t, report.Creates[0].Data.Status)
	assert.Equal(t, "active", *report.Creates[0].Data.Status)
}

func TestValidateLifecycleDatesIndependently(t *testing.T) {
	sheet := buildSheet(
		[]string{"type", "name", "lifecycle_plan", "lifecycle_active", "lifecycle_end_of_life"},
		[]string{"application", "CRM", "2024-01-15", "01/02/2024", "garbage"},
	)

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	// Each malformed date errors on its own column.
	require.Len(t, report.Errors, 2)
	assert.Equal(t, "lifecycle_active", report.Errors[0].Field)
	assert.Equal(t, "lifecycle_end_of_life", report.Errors[1].Field)
}

func TestValidateAttributeTypes(t *testing.T) {
	v := NewRowValidator(testRegistry(), nil, "application")

	t.Run("typed values parse", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"name", "attr_cost", "attr_hosted", "attr_go_live", "attr_criticality", "attr_tags"},
			[]string{"CRM", "1200.50", "yes", "2025-06-01", "high", "web, mobile"},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Creates, 1)

		attrs := report.Creates[0].Data.Attributes
		assert.Equal(t, 1200.50, attrs["cost"])
		assert.Equal(t, true, attrs["hosted"])
		assert.Equal(t, "2025-06-01", attrs["go_live"])
		assert.Equal(t, "high", attrs["criticality"])
		assert.Equal(t, []string{"web", "mobile"}, attrs["tags"])
	})

	t.Run("bad values error per column", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"name", "attr_cost", "attr_hosted", "attr_criticality", "attr_tags"},
			[]string{"CRM", "NaN", "maybe", "medium", "web, desktop"},
		))
		require.Len(t, report.Errors, 4)
		fields := make([]string, 0, 4)
		for _, e := range report.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"attr_cost", "attr_hosted", "attr_criticality", "attr_tags"}, fields)
	})

	t.Run("readonly value warned and dropped", func(t *testing.T) {
		report := v.Validate(buildSheet(
			[]string{"name", "attr_health"},
			[]string{"CRM", "green"},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, "attr_health", report.Warnings[0].Column)
		assert.NotContains(t, report.Creates[0].Data.Attributes, "health")
	})

	t.Run("required empty errors on create", func(t *testing.T) {
		report := NewRowValidator(testRegistry(), nil, "initiative").Validate(buildSheet(
			[]string{"name", "attr_sponsor"},
			[]string{"Cloud Migration", ""},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "attr_sponsor", report.Errors[0].Field)
	})

	t.Run("required field errors when column absent", func(t *testing.T) {
		// Omitting the column entirely is not a loophole around required
		// fields.
		report := NewRowValidator(testRegistry(), nil, "initiative").Validate(buildSheet(
			[]string{"name"},
			[]string{"Cloud Migration"},
		))
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "attr_sponsor", report.Errors[0].Field)
		assert.Contains(t, report.Errors[0].Message, "required")
		assert.Empty(t, report.Creates)
	})

	t.Run("required empty tolerated on update", func(t *testing.T) {
		existingID := uuid.New()
		existing := map[string]*model.Entity{
			existingID.String(): existingEntity(existingID, "initiative", "Cloud Migration"),
		}
		report := NewRowValidator(testRegistry(), existing, "initiative").Validate(buildSheet(
			[]string{"id", "name", "attr_sponsor"},
			[]string{existingID.String(), "Cloud Migration", ""},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Updates, 1)
	})

	t.Run("required column absent tolerated on update", func(t *testing.T) {
		existingID := uuid.New()
		existing := map[string]*model.Entity{
			existingID.String(): existingEntity(existingID, "initiative", "Cloud Migration"),
		}
		report := NewRowValidator(testRegistry(), existing, "initiative").Validate(buildSheet(
			[]string{"id", "name"},
			[]string{existingID.String(), "Cloud Migration renamed"},
		))
		require.Empty(t, report.Errors)
		require.Len(t, report.Updates, 1)
	})
}

func TestValidateUnrecognizedColumnWarning(t *testing.T) {
	sheet := buildSheet(
		[]string{"type", "name", "colour", "attr_nonsense", "lifecycle_plan"},
		[]string{"application", "CRM", "blue", "x", "2024-01-01"},
	)

	report := NewRowValidator(testRegistry(), nil, "").Validate(sheet)

	require.Empty(t, report.Errors)
	cols := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		cols = append(cols, w.Column)
	}
	assert.ElementsMatch(t, []string{"colour", "attr_nonsense"}, cols)
}

func TestValidateExplicitEmptyVersusAbsent(t *testing.T) {
	t.Run("absent column leaves nil", func(t *testing.T) {
		report := NewRowValidator(testRegistry(), nil, "").Validate(buildSheet(
			[]string{"type", "name"},
			[]string{"application", "CRM"},
		))
		require.Len(t, report.Creates, 1)
		assert.Nil(t, report.Creates[0].Data.Description)
	})

	t.Run("present empty cell pins an explicit empty", func(t *testing.T) {
		report := NewRowValidator(testRegistry(), nil, "").Validate(buildSheet(
			[]string{"type", "name", "description"},
			[]string{"application", "CRM", ""},
		))
		require.Len(t, report.Creates, 1)
		require.NotNil(t, report.Creates[0].Data.Description)
		assert.Equal(t, "", *report.Creates[0].Data.Description)
	})
}
