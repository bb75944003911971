package workflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/repo"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/util"
)

// UsuarioStore é o recorte do Record Store usado para contas.
type UsuarioStore interface {
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	ListUsuarios(ctx context.Context) ([]repo.Usuario, error)
	SetUsuarioAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error
}

// SiteStore é o recorte do Record Store usado para sites.
type SiteStore interface {
	GetSiteByID(ctx context.Context, id uuid.UUID) (repo.Site, error)
	GetSiteAprovadoByNome(ctx context.Context, nome string) (repo.Site, error)
	ListSites(ctx context.Context) ([]repo.Site, error)
	ListSitesAprovados(ctx context.Context) ([]repo.Site, error)
	InsertSite(ctx context.Context, arg repo.InsertSiteParams) (repo.Site, error)
	SetSiteAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error
}

// PendenciaStore é o recorte do Record Store usado para pendências.
type PendenciaStore interface {
	GetPendencia(ctx context.Context, id uuid.UUID) (repo.Pendencia, error)
	ListPendencias(ctx context.Context) ([]repo.Pendencia, error)
	InsertPendencia(ctx context.Context, arg repo.InsertPendenciaParams) (repo.Pendencia, error)
	FinalizarPendencia(ctx context.Context, id, finalizadaPor uuid.UUID, quando time.Time) error
}

// Service concentra as regras do fluxo de aprovação: quem pode transitar o quê,
// quando, e quais projeções cada superfície enxerga. Toda operação recebe o
// Ator explicitamente e falha no núcleo, nunca só na interface.
type Service struct {
	usuarios   UsuarioStore
	sites      SiteStore
	pendencias PendenciaStore
}

// NewService cria o serviço de workflow.
func NewService(usuarios UsuarioStore, sites SiteStore, pendencias PendenciaStore) *Service {
	return &Service{usuarios: usuarios, sites: sites, pendencias: pendencias}
}

// CadastroSite encapsula a entrada de cadastro de site pelo admin.
type CadastroSite struct {
	Nome        string
	Latitude    float64
	Longitude   float64
	Observacoes *string
}

// NovaPendencia encapsula a abertura de pendência pelo usuário de campo.
type NovaPendencia struct {
	Site        string
	Tipo        string
	Subtipo     string
	Observacoes string
	FotoURL     *string
}

// ListarUsuarios devolve todas as contas para a fila de aprovação do admin.
func (s *Service) ListarUsuarios(ctx context.Context, ator Ator) ([]repo.Usuario, error) {
	if !ator.Admin() {
		return nil, ErrForbidden
	}
	return s.usuarios.ListUsuarios(ctx)
}

// AprovarUsuario libera a conta indicada.
func (s *Service) AprovarUsuario(ctx context.Context, ator Ator, id uuid.UUID) error {
	return s.setAprovacaoUsuario(ctx, ator, id, true)
}

// RejeitarUsuario revoga a aprovação da conta indicada.
func (s *Service) RejeitarUsuario(ctx context.Context, ator Ator, id uuid.UUID) error {
	return s.setAprovacaoUsuario(ctx, ator, id, false)
}

// setAprovacaoUsuario aplica a flag de aprovação. Contas admin nunca são
// alvo válido: a restrição vale aqui no núcleo, não só no botão desabilitado.
// Gravar o valor já vigente é aceito (operação idempotente).
func (s *Service) setAprovacaoUsuario(ctx context.Context, ator Ator, id uuid.UUID, aprovado bool) error {
	if !ator.Admin() {
		return ErrForbidden
	}

	alvo, err := s.usuarios.GetUsuarioByID(ctx, id)
	if err != nil {
		return err
	}
	if alvo.Papel == PapelAdmin {
		return ErrForbidden
	}

	return s.usuarios.SetUsuarioAprovado(ctx, id, aprovado)
}

// ListarSites devolve todos os sites para o console admin, por nome.
func (s *Service) ListarSites(ctx context.Context, ator Ator) ([]repo.Site, error) {
	if !ator.Admin() {
		return nil, ErrForbidden
	}
	sites, err := s.sites.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	ordenaPorNome(sites)
	return sites, nil
}

// ListarSitesAprovados devolve o universo selecionável para novas pendências,
// por nome. A ordem faz parte do contrato da listagem, não só da query.
func (s *Service) ListarSitesAprovados(ctx context.Context, ator Ator) ([]repo.Site, error) {
	if !ator.Aprovado {
		return nil, ErrForbidden
	}
	sites, err := s.sites.ListSitesAprovados(ctx)
	if err != nil {
		return nil, err
	}
	ordenaPorNome(sites)
	return sites, nil
}

func ordenaPorNome(sites []repo.Site) {
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Nome < sites[j].Nome
	})
}

// CadastrarSite cria um site já aprovado (sites de origem administrativa
// dispensam a etapa de revisão).
func (s *Service) CadastrarSite(ctx context.Context, ator Ator, input CadastroSite) (repo.Site, error) {
	if !ator.Admin() {
		return repo.Site{}, ErrForbidden
	}
	if strings.TrimSpace(input.Nome) == "" {
		return repo.Site{}, ErrNomeObrigatorio
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Latitude != input.Latitude {
		return repo.Site{}, ErrCoordenadaInvalida
	}
	if input.Longitude < -180 || input.Longitude > 180 || input.Longitude != input.Longitude {
		return repo.Site{}, ErrCoordenadaInvalida
	}

	return s.sites.InsertSite(ctx, repo.InsertSiteParams{
		Nome:        input.Nome,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Observacoes: input.Observacoes,
		Aprovado:    true,
	})
}

// AprovarSite libera o site para abertura de pendências.
func (s *Service) AprovarSite(ctx context.Context, ator Ator, id uuid.UUID) error {
	return s.setAprovacaoSite(ctx, ator, id, true)
}

// RejeitarSite revoga a aprovação do site.
func (s *Service) RejeitarSite(ctx context.Context, ator Ator, id uuid.UUID) error {
	return s.setAprovacaoSite(ctx, ator, id, false)
}

func (s *Service) setAprovacaoSite(ctx context.Context, ator Ator, id uuid.UUID, aprovado bool) error {
	if !ator.Admin() {
		return ErrForbidden
	}
	if _, err := s.sites.GetSiteByID(ctx, id); err != nil {
		return err
	}
	return s.sites.SetSiteAprovado(ctx, id, aprovado)
}

// ListarPendencias devolve o histórico completo, mais recentes primeiro.
// A visibilidade é global: toda conta aprovada vê todas as pendências,
// não só as próprias.
func (s *Service) ListarPendencias(ctx context.Context, ator Ator) ([]repo.Pendencia, error) {
	if !ator.Aprovado {
		return nil, ErrForbidden
	}
	pendencias, err := s.pendencias.ListPendencias(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(pendencias, func(i, j int) bool {
		return pendencias[i].CriadoEm.After(pendencias[j].CriadoEm)
	})
	return pendencias, nil
}

// CriarPendencia abre uma pendência em nome do ator. Exige conta aprovada,
// subtipo dentro do vocabulário do tipo e site aprovado como alvo.
func (s *Service) CriarPendencia(ctx context.Context, ator Ator, input NovaPendencia) (repo.Pendencia, error) {
	if !ator.Aprovado {
		return repo.Pendencia{}, ErrForbidden
	}
	if !TipoValido(input.Tipo) {
		return repo.Pendencia{}, ErrTipoInvalido
	}
	if !SubtipoValido(input.Tipo, input.Subtipo) {
		return repo.Pendencia{}, ErrSubtipoInvalido
	}

	if _, err := s.sites.GetSiteAprovadoByNome(ctx, input.Site); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Pendencia{}, ErrSiteNaoAprovado
		}
		return repo.Pendencia{}, err
	}

	return s.pendencias.InsertPendencia(ctx, repo.InsertPendenciaParams{
		Site:        input.Site,
		Tipo:        input.Tipo,
		Subtipo:     strings.TrimSpace(input.Subtipo),
		Observacoes: input.Observacoes,
		FotoURL:     input.FotoURL,
		CriadoPor:   ator.ID,
	})
}

// FinalizarPendencia fecha a pendência. Só admin finaliza, e só a partir do
// status pendente; finished_at e finished_by são gravados juntos, uma vez.
func (s *Service) FinalizarPendencia(ctx context.Context, ator Ator, id uuid.UUID) (repo.Pendencia, error) {
	if !ator.Admin() {
		return repo.Pendencia{}, ErrForbidden
	}

	atual, err := s.pendencias.GetPendencia(ctx, id)
	if err != nil {
		return repo.Pendencia{}, err
	}
	if atual.Status != StatusPendente {
		return repo.Pendencia{}, ErrTransicaoInvalida
	}

	if err := s.pendencias.FinalizarPendencia(ctx, id, ator.ID, util.Now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// outra sessão finalizou entre a leitura e o UPDATE condicional
			return repo.Pendencia{}, ErrTransicaoInvalida
		}
		return repo.Pendencia{}, err
	}

	return s.pendencias.GetPendencia(ctx, id)
}
