package job

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-backend/internal/domains/entity/model"
	"catalog-backend/internal/domains/entity/service"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// ProcessImportHandler runs one queued bulk import end to end.
type ProcessImportHandler struct {
	service service.BulkImportServiceInterface
}

func NewProcessImportHandler(service service.BulkImportServiceInterface) *ProcessImportHandler {
	return &ProcessImportHandler{service: service}
}

func (h *ProcessImportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ImportJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Malformed payload will never succeed, skip retries.
		return fmt.Errorf("invalid import payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().Str("job_id", payload.JobID).Msg("Processing import job")

	if err := h.service.ProcessJob(ctx, payload.JobID); err != nil {
		log.Error().Str("job_id", payload.JobID).Err(err).Msg("Import job processing failed")
		return err
	}

	log.Info().Str("job_id", payload.JobID).Msg("Import job processed")
	return nil
}
