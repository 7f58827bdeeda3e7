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

const upsertArchetypeQuery = `
	INSERT INTO product_archetypes (id, code, name, attribute_codes, option_codes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, attribute_codes = EXCLUDED.attribute_codes,
	    option_codes = EXCLUDED.option_codes, updated_at = EXCLUDED.updated_at`

// ArchetypeRepository implements archetype persistence using PostgreSQL.
type ArchetypeRepository struct {
	pool database.DBTX
}

// NewArchetypeRepository creates a new PostgreSQL-backed archetype repository.
func NewArchetypeRepository(pool database.DBTX) *ArchetypeRepository {
	return &ArchetypeRepository{pool: pool}
}

// ExistingCodes reports which of codes are stored archetypes.
func (r *ArchetypeRepository) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	return existingCodes(ctx, r.pool, "product_archetypes", codes)
}

// UpsertArchetypes inserts or updates the given archetypes in one transaction.
func (r *ArchetypeRepository) UpsertArchetypes(ctx context.Context, archetypes []domain.Archetype) (err error) {
	if len(archetypes) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "UpsertArchetypes", upsertArchetypeQuery)
	defer func() { end(err) }()

	now := time.Now().UTC()
	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range archetypes {
			if _, err := tx.Exec(ctx, upsertArchetypeQuery,
				uuid.New().String(),
				a.Code,
				a.Name,
				nonNil(a.Attributes),
				nonNil(a.Options),
				now,
			); err != nil {
				return fmt.Errorf("upsert archetype %s: %w", a.Code, err)
			}
		}
		return nil
	})
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
