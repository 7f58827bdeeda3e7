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

const upsertOptionQuery = `
	INSERT INTO product_options (id, code, name, position, created_at, updated_at)
	VALUES ($1, $2, $3,
		(SELECT COALESCE(MAX(position) + 1, 0) FROM product_options),
		$4, $4)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
	RETURNING id`

const upsertOptionValueQuery = `
	INSERT INTO product_option_values (id, option_id, code, value, position)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (code) DO UPDATE
	SET option_id = EXCLUDED.option_id, value = EXCLUDED.value, position = EXCLUDED.position`

// OptionRepository implements option persistence using PostgreSQL.
type OptionRepository struct {
	pool database.DBTX
}

// NewOptionRepository creates a new PostgreSQL-backed option repository.
func NewOptionRepository(pool database.DBTX) *OptionRepository {
	return &OptionRepository{pool: pool}
}

// ExistingCodes reports which of codes are stored options.
func (r *OptionRepository) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	return existingCodes(ctx, r.pool, "product_options", codes)
}

// UpsertOptions inserts or updates options and their values in one
// transaction. Value positions follow the order of Option.Values.
func (r *OptionRepository) UpsertOptions(ctx context.Context, options []domain.Option) (err error) {
	if len(options) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "UpsertOptions", upsertOptionQuery)
	defer func() { end(err) }()

	now := time.Now().UTC()
	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, o := range options {
			var optionID string
			if err := tx.QueryRow(ctx, upsertOptionQuery,
				uuid.New().String(),
				o.Code,
				o.Name,
				now,
			).Scan(&optionID); err != nil {
				return fmt.Errorf("upsert option %s: %w", o.Code, err)
			}

			for pos, v := range o.Values {
				if _, err := tx.Exec(ctx, upsertOptionValueQuery,
					uuid.New().String(),
					optionID,
					v.Code,
					v.Value,
					pos,
				); err != nil {
					return fmt.Errorf("upsert option value %s: %w", v.Code, err)
				}
			}
		}
		return nil
	})
}
