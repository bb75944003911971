package workflow

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Papéis de conta.
const (
	PapelAdmin = "admin"
	PapelUser  = "user"
)

// Status de pendência. A única transição legal é pendente -> finalizada.
const (
	StatusPendente   = "pendente"
	StatusFinalizada = "finalizada"
)

// Tipos de pendência.
const (
	TipoEnergia = "Energia"
	TipoArcon   = "Arcon"
)

var (
	// ErrForbidden indica que o ator não pode executar a operação.
	ErrForbidden = errors.New("acesso negado")
	// ErrTransicaoInvalida indica mudança de status fora do fluxo pendente -> finalizada.
	ErrTransicaoInvalida = errors.New("transição de status inválida")
	// ErrTipoInvalido indica tipo fora do vocabulário fixo.
	ErrTipoInvalido = errors.New("tipo de pendência inválido")
	// ErrSubtipoInvalido indica subtipo fora do vocabulário do tipo.
	ErrSubtipoInvalido = errors.New("subtipo inválido para o tipo informado")
	// ErrSiteNaoAprovado indica site inexistente ou ainda não aprovado.
	ErrSiteNaoAprovado = errors.New("site não aprovado para abertura de pendências")
	// ErrCoordenadaInvalida indica latitude/longitude fora das faixas aceitas.
	ErrCoordenadaInvalida = errors.New("coordenada inválida")
	// ErrNomeObrigatorio indica nome de site vazio.
	ErrNomeObrigatorio = errors.New("nome do site obrigatório")
)

// Subtipos permitidos por tipo (vocabulário fechado dos formulários de campo).
var subtiposEnergia = []string{
	"Controladora",
	"QDCA",
	"QM",
	"Retificador",
	"Disjuntor",
	"Bateria",
	"Iluminação Pátio",
	"Sensor de Porta",
	"Sensor de Incêndio",
	"Iluminação Gabinete/Container",
	"Cabo de Alimentação",
}

var subtiposArcon = []string{
	"Trocador de Calor",
	"Sanrio",
	"Walmont",
	"Limpeza",
	"Contatora",
	"Compressor",
	"Gás",
	"Fusível",
	"Placa Queimada",
	"Transformador",
	"Relé Térmico",
	"Relé Falta de Fase",
	"Comando",
	"Alarme",
}

// Subtipos devolve o vocabulário do tipo informado.
func Subtipos(tipo string) ([]string, bool) {
	switch tipo {
	case TipoEnergia:
		return subtiposEnergia, true
	case TipoArcon:
		return subtiposArcon, true
	default:
		return nil, false
	}
}

// TipoValido indica se o tipo pertence ao vocabulário fixo.
func TipoValido(tipo string) bool {
	_, ok := Subtipos(tipo)
	return ok
}

// SubtipoValido indica se o subtipo pertence ao vocabulário do tipo.
func SubtipoValido(tipo, subtipo string) bool {
	opcoes, ok := Subtipos(tipo)
	if !ok {
		return false
	}
	subtipo = strings.TrimSpace(subtipo)
	for _, opcao := range opcoes {
		if opcao == subtipo {
			return true
		}
	}
	return false
}

// Ator identifica quem invoca uma operação do fluxo. É construído a partir
// das claims da sessão e passado explicitamente, nunca lido de estado global.
type Ator struct {
	ID       uuid.UUID
	Papel    string
	Aprovado bool
}

// Admin indica ator com papel admin aprovado.
func (a Ator) Admin() bool {
	return a.Papel == PapelAdmin && a.Aprovado
}
