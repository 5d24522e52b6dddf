package service

import (
	"context"
	"fmt"

	"catalog-backend/internal/domains/entity/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecordWriter is the backend boundary the executor drives: one create or
// one partial patch per row. In-process this is the entity service; tests
// substitute a mock.
type RecordWriter interface {
	CreateRecord(ctx context.Context, input model.CreateEntityInput) (uuid.UUID, error)
	PatchRecord(ctx context.Context, id uuid.UUID, patch map[string]any) error
}

// ProgressFunc receives the running done count against the fixed total
// after every row, success or failure.
type ProgressFunc func(done, total int)

// ImportExecutor walks creates (already in dependency order) then updates
// (in file order), one backend call at a time. Per-row failures are
// recorded and skipped over; nothing is rolled back or retried. Strict
// sequential execution is deliberate: parent-before-child semantics and
// accurate progress both depend on it.
type ImportExecutor struct {
	writer RecordWriter
}

func NewImportExecutor(writer RecordWriter) *ImportExecutor {
	return &ImportExecutor{writer: writer}
}

// Execute runs all creates then all updates and accumulates an
// ImportResult. Created + Updated + Failed always equals the row total.
func (e *ImportExecutor) Execute(ctx context.Context, report *model.ImportReport, onProgress ProgressFunc) *model.ImportResult {
	result := &model.ImportResult{}
	total := len(report.Creates) + len(report.Updates)
	done := 0

	progress := func() {
		done++
		if onProgress != nil {
			onProgress(done, total)
		}
	}

	// File-local id -> server-assigned id, populated as creates land and
	// consulted before emitting every later payload. Write-once per id.
	serverIDs := make(map[string]uuid.UUID)

	for i := range report.Creates {
		row := &report.Creates[i]
		id, err := e.createRow(ctx, row, serverIDs)
		if err != nil {
			result.Failed++
			result.FailedDetails = append(result.FailedDetails, model.FailedRow{
				Row: row.RowIndex, Message: err.Error(),
			})
			log.Warn().Int("row", row.RowIndex).Err(err).Msg("Import create failed")
		} else {
			result.Created++
			if row.FileID != "" {
				serverIDs[row.FileID] = id
			}
		}
		progress()
	}

	for i := range report.Updates {
		row := &report.Updates[i]
		if err := e.updateRow(ctx, row, serverIDs); err != nil {
			result.Failed++
			result.FailedDetails = append(result.FailedDetails, model.FailedRow{
				Row: row.RowIndex, Message: err.Error(),
			})
			log.Warn().Int("row", row.RowIndex).Err(err).Msg("Import update failed")
		} else {
			result.Updated++
		}
		progress()
	}

	return result
}

func (e *ImportExecutor) createRow(ctx context.Context, row *model.ParsedRow, serverIDs map[string]uuid.UUID) (uuid.UUID, error) {
	input := model.CreateEntityInput{
		Type:       row.Type,
		Name:       row.Data.Name,
		Status:     model.StatusDraft,
		Lifecycle:  row.Data.Lifecycle,
		Attributes: row.Data.Attributes,
	}
	if row.Data.Description != nil {
		input.Description = *row.Data.Description
	}
	if row.Data.Subtype != nil {
		input.Subtype = *row.Data.Subtype
	}
	if row.Data.ExternalID != nil {
		input.ExternalID = *row.Data.ExternalID
	}
	if row.Data.Alias != nil {
		input.Alias = *row.Data.Alias
	}
	if row.Data.Status != nil {
		input.Status = *row.Data.Status
	}
	if parent := e.resolveParent(row.ParentID, serverIDs); parent != "" {
		id, err := uuid.Parse(parent)
		if err != nil {
			// Validation guarantees well-formed parents; if something else
			// slips through, fail the row instead of creating it parentless.
			return uuid.Nil, fmt.Errorf("parent reference %q is not a valid id", parent)
		}
		input.ParentID = &id
	}

	return e.writer.CreateRecord(ctx, input)
}

// resolveParent substitutes the server-assigned id for a parent created
// earlier in this batch; anything else passes through unchanged, it
// already names a persisted entity.
func (e *ImportExecutor) resolveParent(parent string, serverIDs map[string]uuid.UUID) string {
	if parent == "" {
		return ""
	}
	if mapped, ok := serverIDs[parent]; ok {
		return mapped.String()
	}
	return parent
}

func (e *ImportExecutor) updateRow(ctx context.Context, row *model.ParsedRow, serverIDs map[string]uuid.UUID) error {
	patch := buildPatch(row, e.resolveParent(row.ParentID, serverIDs))

	// Nothing changed: a no-op success, no network call.
	if len(patch) == 0 {
		return nil
	}
	return e.writer.PatchRecord(ctx, row.Existing.ID, patch)
}

// buildPatch computes the minimal diff of a row against its existing
// snapshot. A nil pointer means the column was absent (no opinion); empty
// and absent compare equal to an empty persisted value; an explicit empty
// cell sends nil to clear the field. Lifecycle goes out whole whenever the
// row carries any of it; attributes merge over the existing map.
func buildPatch(row *model.ParsedRow, resolvedParent string) map[string]any {
	existing := row.Existing
	patch := make(map[string]any)

	diff := func(field string, newVal *string, oldVal string) {
		if newVal == nil || *newVal == oldVal {
			return
		}
		if *newVal == "" {
			patch[field] = nil
		} else {
			patch[field] = *newVal
		}
	}

	if row.Data.Name != "" && row.Data.Name != existing.Name {
		patch["name"] = row.Data.Name
	}
	diff("description", row.Data.Description, existing.Description)
	diff("subtype", row.Data.Subtype, existing.Subtype)
	diff("external_id", row.Data.ExternalID, existing.ExternalID)
	diff("alias", row.Data.Alias, existing.Alias)
	diff("status", row.Data.Status, existing.Status)

	if row.ParentID != "" && resolvedParent != existing.ParentIDString() {
		patch["parent_id"] = resolvedParent
	} else if row.ParentCleared && row.ParentID == "" && existing.ParentID != nil {
		patch["parent_id"] = nil
	}

	if len(row.Data.Lifecycle) > 0 {
		patch["lifecycle"] = row.Data.Lifecycle
	}

	if len(row.Data.Attributes) > 0 {
		merged := make(map[string]any, len(existing.Attributes)+len(row.Data.Attributes))
		for k, v := range existing.Attributes {
			merged[k] = v
		}
		for k, v := range row.Data.Attributes {
			merged[k] = v
		}
		patch["attributes"] = merged
	}

	return patch
}
