package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/pkg/database"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

const taxonColumns = `id, code, name, slug, parent_code, position, created_at, updated_at`

// New taxons are appended after their siblings; an existing taxon keeps
// its position.
const upsertTaxonQuery = `
	INSERT INTO taxons (id, code, name, slug, parent_code, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5,
		(SELECT COALESCE(MAX(position) + 1, 0) FROM taxons WHERE parent_code IS NOT DISTINCT FROM $5::text),
		$6, $6)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, slug = EXCLUDED.slug, parent_code = EXCLUDED.parent_code,
	    updated_at = EXCLUDED.updated_at`

// TaxonRepository implements taxon persistence using PostgreSQL.
type TaxonRepository struct {
	pool database.DBTX
}

// NewTaxonRepository creates a new PostgreSQL-backed taxon repository.
func NewTaxonRepository(pool database.DBTX) *TaxonRepository {
	return &TaxonRepository{pool: pool}
}

// FindByCode retrieves a taxon by code.
func (r *TaxonRepository) FindByCode(ctx context.Context, code string) (_ *domain.Taxon, err error) {
	query := fmt.Sprintf(`SELECT %s FROM taxons WHERE code = $1`, taxonColumns)
	ctx, end := database.TraceQuery(ctx, "FindTaxonByCode", query)
	defer func() { end(err) }()

	var t domain.Taxon
	err = r.pool.QueryRow(ctx, query, code).Scan(
		&t.ID,
		&t.Code,
		&t.Name,
		&t.Slug,
		&t.Parent,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("taxon", code)
		}
		return nil, fmt.Errorf("scan taxon: %w", err)
	}

	return &t, nil
}

// ExistingCodes reports which of codes are stored taxons.
func (r *TaxonRepository) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	return existingCodes(ctx, r.pool, "taxons", codes)
}

// UpsertTaxons inserts or updates the given taxons in one transaction.
func (r *TaxonRepository) UpsertTaxons(ctx context.Context, taxons []domain.Taxon) (err error) {
	if len(taxons) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "UpsertTaxons", upsertTaxonQuery)
	defer func() { end(err) }()

	now := time.Now().UTC()
	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, t := range taxons {
			if _, err := tx.Exec(ctx, upsertTaxonQuery,
				uuid.New().String(),
				t.Code,
				t.Name,
				t.Slug,
				t.Parent,
				now,
			); err != nil {
				if isForeignKeyViolation(err) {
					return apperrors.InvalidInput(fmt.Sprintf("taxon %s: unknown parent", t.Code))
				}
				return fmt.Errorf("upsert taxon %s: %w", t.Code, err)
			}
		}
		return nil
	})
}
