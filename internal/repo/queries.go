package repo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries agrupa o acesso às coleções do portal sobre um pool pgx.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria instância de Queries.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}
