package repository

import (
	"context"

	"catalog-backend/internal/domains/schema/model"
)

// RepositoryInterface loads the type schema registry from persistence.
type RepositoryInterface interface {
	ListTypes(ctx context.Context) ([]model.EntityType, error)
}
