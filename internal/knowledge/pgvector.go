package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	errx "github.com/hrcopilot/server/internal/core/error"
	logx "github.com/hrcopilot/server/pkg/logger"
)

// Querier is the subset of *pgxpool.Pool used by PGVectorIndex.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGVectorIndex searches a Postgres table with a pgvector column.
// The table needs at least `content text` and `embedding vector(n)` columns.
type PGVectorIndex struct {
	db    Querier
	query string
}

// NewPGVectorIndex builds an index over table using cosine distance.
func NewPGVectorIndex(db Querier, table string) *PGVectorIndex {
	ident := pgx.Identifier{table}.Sanitize()
	return &PGVectorIndex{
		db: db,
		query: fmt.Sprintf(
			"SELECT content, 1 - (embedding <=> $1) AS score FROM %s ORDER BY embedding <=> $1 LIMIT $2",
			ident,
		),
	}
}

func (p *PGVectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := p.db.Query(ctx, p.query, pgvector.NewVector(vector), topK)
	if err != nil {
		logx.Error().Err(err).Msg("pgvector similarity query failed")
		return nil, errx.WrapPostgres(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Text, &h.Score); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return hits, nil
}

var _ VectorIndex = (*PGVectorIndex)(nil)
