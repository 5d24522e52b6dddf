package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-backend/internal/domains/entity/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entityColumns = `id, entity_type, name, description, subtype, parent_id,
	external_id, alias, status, lifecycle, attributes, created_at, updated_at`

// patchableColumns whitelists what a partial update may touch.
var patchableColumns = map[string]bool{
	"name":        true,
	"description": true,
	"subtype":     true,
	"parent_id":   true,
	"external_id": true,
	"alias":       true,
	"status":      true,
	"lifecycle":   true,
	"attributes":  true,
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ListAll(ctx context.Context) (map[string]*model.Entity, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM catalog_entities`, entityColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]*model.Entity)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		snapshot[e.ID.String()] = e
	}
	return snapshot, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, entityType string, limit, offset int) ([]*model.Entity, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	where := ""
	args := []any{}
	if entityType != "" {
		where = "WHERE entity_type = $1"
		args = append(args, entityType)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM catalog_entities %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count entities: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM catalog_entities %s ORDER BY name LIMIT $%d OFFSET $%d`,
		entityColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, e)
	}
	return entities, total, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM catalog_entities WHERE id = $1`, entityColumns), id)
	e, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrEntityNotFound
	}
	return e, err
}

func (r *postgresRepository) Create(ctx context.Context, e *model.Entity) error {
	lifecycle, err := json.Marshal(nonNilLifecycle(e.Lifecycle))
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle: %w", err)
	}
	attributes, err := json.Marshal(nonNilAttributes(e.Attributes))
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO catalog_entities
			(id, entity_type, name, description, subtype, parent_id,
			 external_id, alias, status, lifecycle, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		e.ID, e.Type, e.Name, e.Description, e.Subtype, e.ParentID,
		e.ExternalID, e.Alias, e.Status, lifecycle, attributes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entity: %w", err)
	}
	return nil
}

func (r *postgresRepository) Patch(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	if len(patch) == 0 {
		return model.ErrEmptyPatch
	}

	sets := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+2)

	for col, val := range patch {
		if !patchableColumns[col] {
			return fmt.Errorf("column %q is not patchable", col)
		}
		if col == "lifecycle" || col == "attributes" {
			encoded, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", col, err)
			}
			val = encoded
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE catalog_entities SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntityNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_entities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntityNotFound
	}
	return nil
}

func scanEntity(row pgx.Row) (*model.Entity, error) {
	var e model.Entity
	var lifecycle, attributes []byte

	err := row.Scan(
		&e.ID, &e.Type, &e.Name, &e.Description, &e.Subtype, &e.ParentID,
		&e.ExternalID, &e.Alias, &e.Status, &lifecycle, &attributes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(lifecycle) > 0 {
		if err := json.Unmarshal(lifecycle, &e.Lifecycle); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lifecycle: %w", err)
		}
	}
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &e.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}
	return &e, nil
}

func nonNilLifecycle(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilAttributes(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
