package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const usuarioColumns = "id, email, name, senha_hash, role, approved, created_at"

// GetUsuarioByEmail busca conta pelo e-mail (case-insensitive, e-mail é guardado minúsculo).
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM users
        WHERE email = $1
    `
	row := q.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanUsuario(row)
}

// GetUsuarioByID busca conta pelo id.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM users
        WHERE id = $1
    `
	row := q.pool.QueryRow(ctx, query, id)
	return scanUsuario(row)
}

// ListUsuarios devolve todas as contas, mais recentes primeiro.
func (q *Queries) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM users
        ORDER BY created_at DESC
    `
	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// InsertUsuario cria uma nova conta. E-mail duplicado vira ErrEmailEmUso.
func (q *Queries) InsertUsuario(ctx context.Context, arg InsertUsuarioParams) (Usuario, error) {
	const query = `
        INSERT INTO users (email, name, senha_hash, role, approved)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + usuarioColumns + `
    `
	row := q.pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(arg.Email)),
		strings.TrimSpace(arg.Nome),
		arg.SenhaHash,
		arg.Papel,
		arg.Aprovado,
	)

	u, err := scanUsuario(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "uniq_users_admin" {
				return Usuario{}, ErrAdminJaExiste
			}
			return Usuario{}, ErrEmailEmUso
		}
		return Usuario{}, err
	}
	return u, nil
}

// SetUsuarioAprovado grava a flag de aprovação. Gravar o mesmo valor não é erro.
func (q *Queries) SetUsuarioAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error {
	const query = `
        UPDATE users
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

// ExisteAdmin indica se já há ao menos uma conta com papel admin.
func (q *Queries) ExisteAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := q.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&exists)
	return exists, err
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.ID, &u.Email, &u.Nome, &u.SenhaHash, &u.Papel, &u.Aprovado, &u.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
