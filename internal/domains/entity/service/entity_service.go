package service

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/domains/entity/model"
	"catalog-backend/internal/domains/entity/repository"
	schemaService "catalog-backend/internal/domains/schema/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type entityService struct {
	repo   repository.RepositoryInterface
	schema schemaService.ServiceInterface
}

func NewEntityService(repo repository.RepositoryInterface, schema schemaService.ServiceInterface) ServiceInterface {
	return &entityService{repo: repo, schema: schema}
}

func (s *entityService) ListEntities(ctx context.Context, entityType string, limit, offset int) ([]*model.Entity, int, error) {
	return s.repo.List(ctx, entityType, limit, offset)
}

func (s *entityService) GetEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *entityService) CreateEntity(ctx context.Context, req model.CreateEntityRequest) (*model.Entity, error) {
	input := model.CreateEntityInput{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Subtype:     req.Subtype,
		ExternalID:  req.ExternalID,
		Alias:       req.Alias,
		Status:      req.Status,
		Lifecycle:   req.Lifecycle,
		Attributes:  req.Attributes,
	}
	if req.ParentID != "" {
		parent, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_id: %w", err)
		}
		input.ParentID = &parent
	}

	id, err := s.CreateRecord(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *entityService) UpdateEntity(ctx context.Context, id uuid.UUID, req model.UpdateEntityRequest) (*model.Entity, error) {
	patch := make(map[string]any)
	setString := func(col string, val *string) {
		if val == nil {
			return
		}
		if *val == "" {
			patch[col] = nil
		} else {
			patch[col] = *val
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("subtype", req.Subtype)
	setString("parent_id", req.ParentID)
	setString("external_id", req.ExternalID)
	setString("alias", req.Alias)
	setString("status", req.Status)
	if req.Lifecycle != nil {
		patch["lifecycle"] = req.Lifecycle
	}
	if req.Attributes != nil {
		patch["attributes"] = req.Attributes
	}

	if len(patch) > 0 {
		if err := s.PatchRecord(ctx, id, patch); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *entityService) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CreateRecord implements RecordWriter: one create call, returning the
// server-assigned id.
func (s *entityService) CreateRecord(ctx context.Context, input model.CreateEntityInput) (uuid.UUID, error) {
	registry, err := s.schema.GetRegistry(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if _, ok := registry.Type(input.Type); !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", model.ErrUnknownType, input.Type)
	}

	status := input.Status
	if status == "" {
		status = model.StatusDraft
	}

	entity := &model.Entity{
		ID:          uuid.New(),
		Type:        input.Type,
		Name:        input.Name,
		Description: input.Description,
		Subtype:     input.Subtype,
		ParentID:    input.ParentID,
		ExternalID:  input.ExternalID,
		Alias:       input.Alias,
		Status:      status,
		Lifecycle:   input.Lifecycle,
		Attributes:  input.Attributes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return uuid.Nil, err
	}

	log.Info().
		Str("entity_id", entity.ID.String()).
		Str("type", entity.Type).
		Str("name", entity.Name).
		Msg("Created catalog entity")

	return entity.ID, nil
}

// PatchRecord implements RecordWriter: one partial update by id.
func (s *entityService) PatchRecord(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	return s.repo.Patch(ctx, id, patch)
}
