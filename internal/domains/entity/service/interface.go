package service

import (
	"context"

	"catalog-backend/internal/domains/entity/model"

	"github.com/google/uuid"
)

// ServiceInterface defines catalog entity operations. It is a superset of
// RecordWriter so the import executor can drive it directly.
type ServiceInterface interface {
	RecordWriter

	ListEntities(ctx context.Context, entityType string, limit, offset int) ([]*model.Entity, int, error)
	GetEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	CreateEntity(ctx context.Context, req model.CreateEntityRequest) (*model.Entity, error)
	UpdateEntity(ctx context.Context, id uuid.UUID, req model.UpdateEntityRequest) (*model.Entity, error)
	DeleteEntity(ctx context.Context, id uuid.UUID) error
}

// BulkImportServiceInterface defines the spreadsheet import operations.
type BulkImportServiceInterface interface {
	// Preview extracts and validates without touching the backend, so the
	// caller can show errors and warnings before committing.
	Preview(ctx context.Context, fileData []byte, selectedType string) (*model.ImportReport, error)

	// Import validates, orders and executes in one go. Row-level problems
	// land in the report/result; only a malformed workbook returns an error.
	Import(ctx context.Context, fileData []byte, selectedType string, onProgress ProgressFunc) (*model.ImportReport, *model.ImportResult, error)

	// ImportAsync stashes the workbook, records a pending job and enqueues
	// it for the worker. GetJob serves status polling.
	ImportAsync(ctx context.Context, fileName string, fileData []byte, selectedType string) (*model.ImportJob, error)
	GetJob(ctx context.Context, id string) (*model.ImportJob, error)

	// ProcessJob is the worker entry point for one queued import.
	ProcessJob(ctx context.Context, jobID string) error
}
