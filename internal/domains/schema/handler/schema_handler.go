package handler

import (
	"errors"
	"net/http"

	"catalog-backend/internal/domains/schema/model"
	"catalog-backend/internal/domains/schema/service"
	"catalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SchemaHandler struct {
	service service.ServiceInterface
}

func NewSchemaHandler(service service.ServiceInterface) *SchemaHandler {
	return &SchemaHandler{service: service}
}

// ListTypes - GET /v1/catalog/types
func (h *SchemaHandler) ListTypes(c *gin.Context) {
	registry, err := h.service.GetRegistry(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load type registry")
		response.InternalServerError(c, "failed to load type registry")
		return
	}
	response.Success(c, http.StatusOK, registry.Types())
}

// GetType - GET /v1/catalog/types/:key
func (h *SchemaHandler) GetType(c *gin.Context) {
	t, err := h.service.GetType(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, model.ErrTypeNotFound) {
			response.NotFound(c, "entity type not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load entity type")
		response.InternalServerError(c, "failed to load entity type")
		return
	}
	response.Success(c, http.StatusOK, t)
}
