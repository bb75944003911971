package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const pendenciaColumns = "id, site, tipo, subtipo, observacoes, foto_url, status, created_at, created_by, finished_at, finished_by"

// GetPendencia busca pendência pelo id.
func (q *Queries) GetPendencia(ctx context.Context, id uuid.UUID) (Pendencia, error) {
	const query = `
        SELECT ` + pendenciaColumns + `
        FROM pendencias
        WHERE id = $1
    `
	row := q.pool.QueryRow(ctx, query, id)
	return scanPendencia(row)
}

// ListPendencias devolve o histórico completo, mais recentes primeiro.
// A mesma projeção atende o console admin e o painel do usuário.
func (q *Queries) ListPendencias(ctx context.Context) ([]Pendencia, error) {
	const query = `
        SELECT ` + pendenciaColumns + `
        FROM pendencias
        ORDER BY created_at DESC
    `
	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pendencias []Pendencia
	for rows.Next() {
		p, err := scanPendencia(rows)
		if err != nil {
			return nil, err
		}
		pendencias = append(pendencias, p)
	}
	return pendencias, rows.Err()
}

// InsertPendencia abre uma nova pendência com status pendente.
func (q *Queries) InsertPendencia(ctx context.Context, arg InsertPendenciaParams) (Pendencia, error) {
	const query = `
        INSERT INTO pendencias (site, tipo, subtipo, observacoes, foto_url, status, created_by)
        VALUES ($1, $2, $3, $4, $5, 'pendente', $6)
        RETURNING ` + pendenciaColumns + `
    `
	row := q.pool.QueryRow(ctx, query,
		strings.TrimSpace(arg.Site),
		arg.Tipo,
		arg.Subtipo,
		strings.TrimSpace(arg.Observacoes),
		arg.FotoURL,
		arg.CriadoPor,
	)
	return scanPendencia(row)
}

// FinalizarPendencia fecha a pendência de forma condicional: o UPDATE só
// casa enquanto o status ainda é pendente, de modo que duas finalizações
// concorrentes nunca gravam finished_at/finished_by duas vezes.
func (q *Queries) FinalizarPendencia(ctx context.Context, id, finalizadaPor uuid.UUID, quando time.Time) error {
	const query = `
        UPDATE pendencias
        SET status = 'finalizada', finished_at = $3, finished_by = $2
        WHERE id = $1 AND status = 'pendente'
    `
	cmd, err := q.pool.Exec(ctx, query, id, finalizadaPor, quando)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPendencia(row pgx.Row) (Pendencia, error) {
	var p Pendencia
	if err := row.Scan(&p.ID, &p.Site, &p.Tipo, &p.Subtipo, &p.Observacoes, &p.FotoURL, &p.Status, &p.CriadoEm, &p.CriadoPor, &p.FinalizadaEm, &p.FinalizadaPor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pendencia{}, ErrNotFound
		}
		return Pendencia{}, err
	}
	return p, nil
}
