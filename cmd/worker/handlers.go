package main

import (
	"github.com/hibiken/asynq"

	entityJob "catalog-backend/internal/domains/entity/job"
	"catalog-backend/internal/shared"
	"catalog-backend/pkg/container"
)

// HandlerRegistry holds all job handlers the worker serves.
type HandlerRegistry struct {
	processImport *entityJob.ProcessImportHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		processImport: entityJob.NewProcessImportHandler(c.BulkImportService),
	}
}

// RegisterHandlers binds task types to their handlers.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessImport, h.processImport.ProcessTask)
}
