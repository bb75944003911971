package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/db"
)

// GetRefreshTokenByHash busca refresh token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (TokenRefresh, error) {
	const query = `
        SELECT id, subject, audience, token_hash, expiracao, criado_em, revogado
        FROM tokens_refresh
        WHERE token_hash = $1
    `
	row := q.pool.QueryRow(ctx, query, tokenHash)
	return scanTokenRefresh(row)
}

// RevokeRefreshToken marca o token como revogado.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	const query = `
        UPDATE tokens_refresh
        SET revogado = TRUE
        WHERE token_hash = $1
    `
	cmd, err := q.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken grava o novo token e revoga os demais do mesmo sujeito
// numa única transação: a rotação nunca deixa duas sessões ativas.
func (q *Queries) RotateRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (TokenRefresh, error) {
	const insert = `
        INSERT INTO tokens_refresh (id, subject, audience, token_hash, expiracao, criado_em, revogado)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        RETURNING id, subject, audience, token_hash, expiracao, criado_em, revogado
    `
	const revokeOthers = `
        UPDATE tokens_refresh
        SET revogado = TRUE
        WHERE subject = $1 AND audience = $2 AND token_hash <> $3 AND revogado = FALSE
    `

	var token TokenRefresh
	err := db.WithTx(ctx, q.pool, func(pctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(pctx, insert, arg.ID, arg.Subject, arg.Audience, arg.TokenHash, arg.Expiracao, arg.CriadoEm)
		var err error
		token, err = scanTokenRefresh(row)
		if err != nil {
			return err
		}
		_, err = tx.Exec(pctx, revokeOthers, arg.Subject, arg.Audience, arg.TokenHash)
		return err
	})
	if err != nil {
		return TokenRefresh{}, err
	}
	return token, nil
}

func scanTokenRefresh(row pgx.Row) (TokenRefresh, error) {
	var t TokenRefresh
	if err := row.Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenRefresh{}, ErrNotFound
		}
		return TokenRefresh{}, err
	}
	return t, nil
}
