package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-backend/internal/domains/schema/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ListTypes loads every entity type with its field definitions in declared
// order. Options are stored as a jsonb array per field.
func (r *postgresRepository) ListTypes(ctx context.Context) ([]model.EntityType, error) {
	typeRows, err := r.pool.Query(ctx, `
		SELECT key, label, hidden FROM entity_types ORDER BY position, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity types: %w", err)
	}
	defer typeRows.Close()

	var types []model.EntityType
	index := make(map[string]int)
	for typeRows.Next() {
		var t model.EntityType
		if err := typeRows.Scan(&t.Key, &t.Label, &t.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan entity type: %w", err)
		}
		index[t.Key] = len(types)
		types = append(types, t)
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	fieldRows, err := r.pool.Query(ctx, `
		SELECT type_key, key, label, field_type, required, readonly, options
		FROM field_definitions ORDER BY type_key, position, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}
	defer fieldRows.Close()

	for fieldRows.Next() {
		var typeKey string
		var f model.FieldDefinition
		var options []byte
		if err := fieldRows.Scan(&typeKey, &f.Key, &f.Label, &f.Type, &f.Required, &f.ReadOnly, &options); err != nil {
			return nil, fmt.Errorf("failed to scan field definition: %w", err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &f.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal field options: %w", err)
			}
		}
		if i, ok := index[typeKey]; ok {
			types[i].Fields = append(types[i].Fields, f)
		}
	}
	return types, fieldRows.Err()
}
