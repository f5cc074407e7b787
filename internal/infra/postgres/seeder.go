package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"triage-service/internal/catalog"
)

type catalogRow struct {
	bun.BaseModel `bun:"table:catalogs"`

	ID        string           `bun:"id,pk"`
	Data      catalog.Document `bun:"data,type:jsonb"`
	UpdatedAt time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Seeder upserts catalog documents into the catalogs table.
type Seeder struct {
	db  *bun.DB
	now func() time.Time
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db, now: time.Now}
}

// Seed compiles every document first and writes nothing if any is invalid.
func (s *Seeder) Seed(ctx context.Context, docs []catalog.Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]catalogRow, 0, len(docs))
	for _, doc := range docs {
		if _, err := catalog.Compile(doc); err != nil {
			return fmt.Errorf("seed %s: %w", doc.ID, err)
		}
		rows = append(rows, catalogRow{ID: doc.ID, Data: doc, UpdatedAt: s.now().UTC()})
	}

	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert catalogs: %w", err)
	}
	return nil
}
