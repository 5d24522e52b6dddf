package handler

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-backend/internal/domains/entity/model"
	"catalog-backend/internal/domains/entity/service"
	"catalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EntityHandler struct {
	service service.ServiceInterface
}

func NewEntityHandler(service service.ServiceInterface) *EntityHandler {
	return &EntityHandler{service: service}
}

// List - GET /v1/catalog/entities?type=&limit=&offset=
func (h *EntityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entityType := c.Query("type")

	entities, total, err := h.service.ListEntities(c.Request.Context(), entityType, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list entities")
		response.InternalServerError(c, "failed to list entities")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entities, &response.Meta{
		Limit: limit, Offset: offset, Total: total,
	})
}

// Get - GET /v1/catalog/entities/:id
func (h *EntityHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid entity id")
		return
	}

	entity, err := h.service.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entity)
}

// Create - POST /v1/catalog/entities
func (h *EntityHandler) Create(c *gin.Context) {
	var req model.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, "validation failed", err)
		return
	}

	entity, err := h.service.CreateEntity(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entity)
}

// Update - PATCH /v1/catalog/entities/:id
func (h *EntityHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid entity id")
		return
	}

	var req model.UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, "validation failed", err)
		return
	}

	entity, err := h.service.UpdateEntity(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entity)
}

// Delete - DELETE /v1/catalog/entities/:id
func (h *EntityHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid entity id")
		return
	}

	if err := h.service.DeleteEntity(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EntityHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrEntityNotFound):
		response.NotFound(c, "entity not found")
	case errors.Is(err, model.ErrUnknownType):
		response.BadRequest(c, err.Error())
	default:
		log.Error().Err(err).Msg("Entity operation failed")
		response.InternalServerError(c, "internal server error")
	}
}
