package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrEmailEmUso é retornado quando o e-mail já está cadastrado.
	ErrEmailEmUso = errors.New("e-mail já cadastrado")
	// ErrAdminJaExiste é retornado quando já há conta admin gravada.
	ErrAdminJaExiste = errors.New("conta admin já cadastrada")
)
