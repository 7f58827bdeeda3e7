package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/pkg/database"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

const insertProductQuery = `
	INSERT INTO products (id, code, name, slug, main_taxon_code, archetype_code, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

const insertProductTaxonQuery = `
	INSERT INTO product_taxons (product_id, taxon_code, position)
	VALUES ($1, $2, $3)`

const insertProductAttributeValueQuery = `
	INSERT INTO product_attribute_values (product_id, attribute_code, value)
	VALUES ($1, $2, $3)`

// ProductRepository implements product persistence using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// CreateProducts inserts products with their taxons and attribute values in
// one transaction. IDs are assigned to products that have none.
func (r *ProductRepository) CreateProducts(ctx context.Context, products []domain.Product) (err error) {
	if len(products) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "CreateProducts", insertProductQuery)
	defer func() { end(err) }()

	now := time.Now().UTC()
	return database.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range products {
			p := &products[i]
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			p.CreatedAt, p.UpdatedAt = now, now

			if err := insertProduct(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertProduct(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	_, err := tx.Exec(ctx, insertProductQuery,
		p.ID,
		p.Code,
		p.Name,
		p.Slug,
		nullable(p.MainTaxon),
		nullable(p.Archetype),
		p.CreatedAt,
	)
	if err != nil {
		return productError(p.Code, "insert product", err)
	}

	for pos, code := range p.Taxons {
		if _, err := tx.Exec(ctx, insertProductTaxonQuery, p.ID, code, pos); err != nil {
			return productError(p.Code, "insert product taxon", err)
		}
	}

	for _, av := range p.Attributes {
		if _, err := tx.Exec(ctx, insertProductAttributeValueQuery, p.ID, av.Attribute, av.Value); err != nil {
			return productError(p.Code, "insert product attribute value", err)
		}
	}

	return nil
}

func productError(code, op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return apperrors.AlreadyExists("product", "code", code)
	case isForeignKeyViolation(err):
		return apperrors.InvalidInput(fmt.Sprintf("product %s references an unknown record", code))
	default:
		return fmt.Errorf("%s %s: %w", op, code, err)
	}
}

// nullable maps an empty code to SQL NULL.
func nullable(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}
