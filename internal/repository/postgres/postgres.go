// Package postgres implements the catalog repositories on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/utafrali/catalog-fixtures/pkg/database"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}

// existingCodes returns the subset of codes present in table.code. table is
// always a package constant.
func existingCodes(ctx context.Context, db database.DBTX, table string, codes []string) (_ map[string]bool, err error) {
	found := make(map[string]bool, len(codes))
	if len(codes) == 0 {
		return found, nil
	}

	query := fmt.Sprintf(`SELECT code FROM %s WHERE code = ANY($1)`, table)
	ctx, end := database.TraceQuery(ctx, "ExistingCodes", query)
	defer func() { end(err) }()

	rows, err := db.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("query %s codes: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan %s code: %w", table, err)
		}
		found[code] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s codes: %w", table, err)
	}

	return found, nil
}
