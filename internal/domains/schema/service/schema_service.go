package service

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/domains/schema/model"
	"catalog-backend/internal/domains/schema/repository"
	"catalog-backend/pkg/cache"

	"github.com/rs/zerolog/log"
)

const (
	registryCacheKey = "schema:registry"
	registryCacheTTL = 5 * time.Minute
)

// ServiceInterface exposes the type schema registry to the rest of the app.
type ServiceInterface interface {
	GetRegistry(ctx context.Context) (*model.Registry, error)
	GetType(ctx context.Context, key string) (model.EntityType, error)
	Invalidate(ctx context.Context) error
}

type schemaService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

func NewSchemaService(repo repository.RepositoryInterface, c cache.Cache) ServiceInterface {
	return &schemaService{repo: repo, cache: c}
}

// GetRegistry returns the registry, serving from cache when possible.
// Cache failures degrade to a direct repository read.
func (s *schemaService) GetRegistry(ctx context.Context) (*model.Registry, error) {
	var cached []model.EntityType
	if s.cache != nil {
		found, err := s.cache.Get(ctx, registryCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("Schema registry cache read failed")
		} else if found {
			return model.NewRegistry(cached), nil
		}
	}

	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema registry: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, registryCacheKey, types, registryCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Schema registry cache write failed")
		}
	}
	return model.NewRegistry(types), nil
}

func (s *schemaService) GetType(ctx context.Context, key string) (model.EntityType, error) {
	registry, err := s.GetRegistry(ctx)
	if err != nil {
		return model.EntityType{}, err
	}
	t, ok := registry.Type(key)
	if !ok {
		return model.EntityType{}, model.ErrTypeNotFound
	}
	return t, nil
}

func (s *schemaService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, registryCacheKey)
}
