package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa uma conta do portal (coluna a coluna da tabela users).
type Usuario struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Nome      string    `json:"name"`
	SenhaHash string    `json:"-"`
	Papel     string    `json:"role"`
	Aprovado  bool      `json:"approved"`
	CriadoEm  time.Time `json:"created_at"`
}

// Site representa um site físico importado/cadastrado (tabela sites_kml).
type Site struct {
	ID          uuid.UUID `json:"id"`
	Nome        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Observacoes *string   `json:"observacoes,omitempty"`
	Aprovado    bool      `json:"approved"`
	CriadoEm    time.Time `json:"created_at"`
}

// Pendencia representa um chamado de campo (tabela pendencias).
// O vínculo com o site é por nome, não por chave estrangeira.
type Pendencia struct {
	ID            uuid.UUID  `json:"id"`
	Site          string     `json:"site"`
	Tipo          string     `json:"tipo"`
	Subtipo       string     `json:"subtipo"`
	Observacoes   string     `json:"observacoes"`
	FotoURL       *string    `json:"foto_url,omitempty"`
	Status        string     `json:"status"`
	CriadoEm      time.Time  `json:"created_at"`
	CriadoPor     uuid.UUID  `json:"created_by"`
	FinalizadaEm  *time.Time `json:"finished_at,omitempty"`
	FinalizadaPor *uuid.UUID `json:"finished_by,omitempty"`
}

// TokenRefresh modela tabela de refresh tokens.
type TokenRefresh struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogado  bool
}

// InsertUsuarioParams encapsula campos de criação de conta.
type InsertUsuarioParams struct {
	Email     string
	Nome      string
	SenhaHash string
	Papel     string
	Aprovado  bool
}

// InsertSiteParams encapsula campos de cadastro de site.
type InsertSiteParams struct {
	Nome        string
	Latitude    float64
	Longitude   float64
	Observacoes *string
	Aprovado    bool
}

// InsertPendenciaParams encapsula campos de abertura de pendência.
type InsertPendenciaParams struct {
	Site        string
	Tipo        string
	Subtipo     string
	Observacoes string
	FotoURL     *string
	CriadoPor   uuid.UUID
}

// InsertRefreshTokenParams encapsula persistência de refresh token.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
}
