package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/pkg/database"
)

const upsertAttributeQuery = `
	INSERT INTO product_attributes (id, code, name, type, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4,
		(SELECT COALESCE(MAX(position) + 1, 0) FROM product_attributes),
		$5, $5)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, type = EXCLUDED.type, updated_at = EXCLUDED.updated_at`

// AttributeRepository implements attribute persistence using PostgreSQL.
type AttributeRepository struct {
	pool database.DBTX
}

// NewAttributeRepository creates a new PostgreSQL-backed attribute repository.
func NewAttributeRepository(pool database.DBTX) *AttributeRepository {
	return &AttributeRepository{pool: pool}
}

// ExistingCodes reports which of codes are stored attributes.
func (r *AttributeRepository) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	return existingCodes(ctx, r.pool, "product_attributes", codes)
}

// UpsertAttributes inserts or updates the given attributes in one transaction.
func (r *AttributeRepository) UpsertAttributes(ctx context.Context, attributes []domain.Attribute) (err error) {
	if len(attributes) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "UpsertAttributes", upsertAttributeQuery)
	defer func() { end(err) }()

	now := time.Now().UTC()
	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range attributes {
			if _, err := tx.Exec(ctx, upsertAttributeQuery,
				uuid.New().String(),
				a.Code,
				a.Name,
				a.Type,
				now,
			); err != nil {
				return fmt.Errorf("upsert attribute %s: %w", a.Code, err)
			}
		}
		return nil
	})
}
