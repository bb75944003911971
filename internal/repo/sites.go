package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const siteColumns = "id, name, latitude, longitude, observacoes, approved, created_at"

// GetSiteByID busca site pelo id.
func (q *Queries) GetSiteByID(ctx context.Context, id uuid.UUID) (Site, error) {
	const query = `
        SELECT ` + siteColumns + `
        FROM sites_kml
        WHERE id = $1
    `
	row := q.pool.QueryRow(ctx, query, id)
	return scanSite(row)
}

// GetSiteAprovadoByNome busca site aprovado pelo nome exato.
func (q *Queries) GetSiteAprovadoByNome(ctx context.Context, nome string) (Site, error) {
	const query = `
        SELECT ` + siteColumns + `
        FROM sites_kml
        WHERE name = $1 AND approved = TRUE
    `
	row := q.pool.QueryRow(ctx, query, strings.TrimSpace(nome))
	return scanSite(row)
}

// ListSites devolve todos os sites, ordenados por nome (console admin).
func (q *Queries) ListSites(ctx context.Context) ([]Site, error) {
	const query = `
        SELECT ` + siteColumns + `
        FROM sites_kml
        ORDER BY name ASC
    `
	return q.querySites(ctx, query)
}

// ListSitesAprovados devolve apenas sites aprovados, ordenados por nome.
func (q *Queries) ListSitesAprovados(ctx context.Context) ([]Site, error) {
	const query = `
        SELECT ` + siteColumns + `
        FROM sites_kml
        WHERE approved = TRUE
        ORDER BY name ASC
    `
	return q.querySites(ctx, query)
}

// InsertSite cadastra um site.
func (q *Queries) InsertSite(ctx context.Context, arg InsertSiteParams) (Site, error) {
	const query = `
        INSERT INTO sites_kml (name, latitude, longitude, observacoes, approved)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + siteColumns + `
    `
	row := q.pool.QueryRow(ctx, query,
		strings.TrimSpace(arg.Nome),
		arg.Latitude,
		arg.Longitude,
		arg.Observacoes,
		arg.Aprovado,
	)
	return scanSite(row)
}

// SetSiteAprovado grava a flag de aprovação do site.
func (q *Queries) SetSiteAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error {
	const query = `
        UPDATE sites_kml
        SET approved = $2
        WHERE id = $1
    `
	cmd, err := q.pool.Exec(ctx, query, id, aprovado)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) querySites(ctx context.Context, query string) ([]Site, error) {
	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

func scanSite(row pgx.Row) (Site, error) {
	var s Site
	if err := row.Scan(&s.ID, &s.Nome, &s.Latitude, &s.Longitude, &s.Observacoes, &s.Aprovado, &s.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, ErrNotFound
		}
		return Site{}, err
	}
	return s, nil
}
