package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier abstrae *pgxpool.Pool y pgx.Tx para que los repositorios funcionen con cualquiera de los dos.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
