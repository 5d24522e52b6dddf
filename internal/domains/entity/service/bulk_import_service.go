package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-backend/internal/domains/entity/model"
	"catalog-backend/internal/domains/entity/repository"
	schemaService "catalog-backend/internal/domains/schema/service"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type bulkImportService struct {
	entityRepo repository.RepositoryInterface
	jobRepo    repository.ImportJobRepository
	schema     schemaService.ServiceInterface
	writer     RecordWriter

	storage     *storage.MinIOStorage
	asynqClient *asynq.Client
}

// NewBulkImportService wires the import pipeline. storage and asynqClient
// may be nil when async mode is not configured (e.g. in tests).
func NewBulkImportService(
	entityRepo repository.RepositoryInterface,
	jobRepo repository.ImportJobRepository,
	schema schemaService.ServiceInterface,
	writer RecordWriter,
	minioStorage *storage.MinIOStorage,
	asynqClient *asynq.Client,
) BulkImportServiceInterface {
	return &bulkImportService{
		entityRepo:  entityRepo,
		jobRepo:     jobRepo,
		schema:      schema,
		writer:      writer,
		storage:     minioStorage,
		asynqClient: asynqClient,
	}
}

// Preview runs extract + validate and returns the report for display.
func (s *bulkImportService) Preview(ctx context.Context, fileData []byte, selectedType string) (*model.ImportReport, error) {
	report, _, err := s.validate(ctx, fileData, selectedType)
	return report, err
}

// Import runs the full pipeline: extract, validate, order, execute. Rows
// that validated cleanly are imported even when sibling rows errored.
func (s *bulkImportService) Import(ctx context.Context, fileData []byte, selectedType string, onProgress ProgressFunc) (*model.ImportReport, *model.ImportResult, error) {
	report, _, err := s.validate(ctx, fileData, selectedType)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Int("total_rows", report.TotalRows).
		Int("creates", len(report.Creates)).
		Int("updates", len(report.Updates)).
		Int("errors", len(report.Errors)).
		Int("skipped", report.Skipped).
		Msg("Import validated, executing")

	report.Creates = OrderCreates(report.Creates)
	result := NewImportExecutor(s.writer).Execute(ctx, report, onProgress)

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("Import completed")

	return report, result, nil
}

func (s *bulkImportService) validate(ctx context.Context, fileData []byte, selectedType string) (*model.ImportReport, *model.SheetData, error) {
	sheet, err := ExtractRows(fileData)
	if err != nil {
		return nil, nil, err
	}

	registry, err := s.schema.GetRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.entityRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load entity snapshot: %w", err)
	}

	validator := NewRowValidator(registry, existing, selectedType)
	return validator.Validate(sheet), sheet, nil
}

// ========================================
// ASYNC MODE
// ========================================

func (s *bulkImportService) ImportAsync(ctx context.Context, fileName string, fileData []byte, selectedType string) (*model.ImportJob, error) {
	if s.storage == nil || s.asynqClient == nil {
		return nil, fmt.Errorf("async import is not configured")
	}

	job := &model.ImportJob{
		ID:           uuid.New().String(),
		FileName:     fileName,
		SelectedType: selectedType,
		Status:       model.JobStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	job.FileKey = fmt.Sprintf("imports/%s.xlsx", job.ID)

	if err := s.storage.Upload(ctx, job.FileKey, fileData,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
		return nil, err
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(model.ImportJobPayload{JobID: job.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeProcessImport, payload)
	if _, err := s.asynqClient.Enqueue(task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(2)); err != nil {
		return nil, fmt.Errorf("failed to enqueue import job: %w", err)
	}

	log.Info().
		Str("job_id", job.ID).
		Str("file_name", fileName).
		Msg("Import job enqueued")

	return job, nil
}

func (s *bulkImportService) GetJob(ctx context.Context, id string) (*model.ImportJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ProcessJob is invoked by the worker for one queued import. A transient
// storage failure returns an error so asynq retries; a malformed workbook
// fails the job permanently.
func (s *bulkImportService) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := s.jobRepo.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	fileData, err := s.storage.Download(ctx, job.FileKey)
	if err != nil {
		return err
	}

	report, result, err := s.Import(ctx, fileData, job.SelectedType, nil)
	if err != nil {
		log.Error().Str("job_id", job.ID).Err(err).Msg("Import job failed")
		return s.jobRepo.MarkFailed(ctx, job.ID, err.Error())
	}

	if err := s.jobRepo.MarkCompleted(ctx, job.ID, report, result); err != nil {
		return err
	}

	// The stashed workbook is no longer needed.
	if err := s.storage.Remove(ctx, job.FileKey); err != nil {
		log.Warn().Str("job_id", job.ID).Err(err).Msg("Failed to remove stashed workbook")
	}
	return nil
}
