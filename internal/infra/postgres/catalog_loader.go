package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"triage-service/internal/catalog"
	"triage-service/internal/domain"
)

// CatalogLoader loads catalog JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) Source() string { return "postgres" }

func (l *CatalogLoader) LoadCatalog(ctx context.Context, specialty string) (catalog.Document, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, specialty).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Document{}, fmt.Errorf("%w: %s", domain.ErrUnknownSpecialty, specialty)
	}
	if err != nil {
		return catalog.Document{}, fmt.Errorf("load catalog: %w", err)
	}
	doc, err := catalog.ParseJSON(raw)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("catalog %s: %w", specialty, err)
	}
	return doc, nil
}

func (l *CatalogLoader) ListCatalogs(ctx context.Context) ([]domain.Specialty, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, data->>'name', coalesce(data->>'description', '') FROM catalogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var out []domain.Specialty
	for rows.Next() {
		var s domain.Specialty
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
