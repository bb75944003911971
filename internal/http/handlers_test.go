package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/http/middleware"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/repo"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

type stubUsuarios struct {
	usuarios map[uuid.UUID]repo.Usuario
}

func (s *stubUsuarios) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubUsuarios) ListUsuarios(ctx context.Context) ([]repo.Usuario, error) {
	out := make([]repo.Usuario, 0, len(s.usuarios))
	for _, u := range s.usuarios {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsuarios) SetUsuarioAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Aprovado = aprovado
	s.usuarios[id] = u
	return nil
}

type stubSites struct {
	sites map[uuid.UUID]repo.Site
}

func (s *stubSites) GetSiteByID(ctx context.Context, id uuid.UUID) (repo.Site, error) {
	site, ok := s.sites[id]
	if !ok {
		return repo.Site{}, repo.ErrNotFound
	}
	return site, nil
}

func (s *stubSites) GetSiteAprovadoByNome(ctx context.Context, nome string) (repo.Site, error) {
	for _, site := range s.sites {
		if site.Nome == nome && site.Aprovado {
			return site, nil
		}
	}
	return repo.Site{}, repo.ErrNotFound
}

func (s *stubSites) ListSites(ctx context.Context) ([]repo.Site, error) {
	out := make([]repo.Site, 0, len(s.sites))
	for _, site := range s.sites {
		out = append(out, site)
	}
	return out, nil
}

func (s *stubSites) ListSitesAprovados(ctx context.Context) ([]repo.Site, error) {
	var out []repo.Site
	for _, site := range s.sites {
		if site.Aprovado {
			out = append(out, site)
		}
	}
	return out, nil
}

func (s *stubSites) InsertSite(ctx context.Context, arg repo.InsertSiteParams) (repo.Site, error) {
	site := repo.Site{
		ID:          uuid.New(),
		Nome:        arg.Nome,
		Latitude:    arg.Latitude,
		Longitude:   arg.Longitude,
		Observacoes: arg.Observacoes,
		Aprovado:    arg.Aprovado,
		CriadoEm:    time.Now(),
	}
	s.sites[site.ID] = site
	return site, nil
}

func (s *stubSites) SetSiteAprovado(ctx context.Context, id uuid.UUID, aprovado bool) error {
	site, ok := s.sites[id]
	if !ok {
		return repo.ErrNotFound
	}
	site.Aprovado = aprovado
	s.sites[id] = site
	return nil
}

type stubPendencias struct {
	pendencias map[uuid.UUID]repo.Pendencia
}

func (s *stubPendencias) GetPendencia(ctx context.Context, id uuid.UUID) (repo.Pendencia, error) {
	p, ok := s.pendencias[id]
	if !ok {
		return repo.Pendencia{}, repo.ErrNotFound
	}
	return p, nil
}

func (s *stubPendencias) ListPendencias(ctx context.Context) ([]repo.Pendencia, error) {
	out := make([]repo.Pendencia, 0, len(s.pendencias))
	for _, p := range s.pendencias {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPendencias) InsertPendencia(ctx context.Context, arg repo.InsertPendenciaParams) (repo.Pendencia, error) {
	p := repo.Pendencia{
		ID:          uuid.New(),
		Site:        arg.Site,
		Tipo:        arg.Tipo,
		Subtipo:     arg.Subtipo,
		Observacoes: arg.Observacoes,
		FotoURL:     arg.FotoURL,
		Status:      workflow.StatusPendente,
		CriadoEm:    time.Now(),
		CriadoPor:   arg.CriadoPor,
	}
	s.pendencias[p.ID] = p
	return p, nil
}

func (s *stubPendencias) FinalizarPendencia(ctx context.Context, id, finalizadaPor uuid.UUID, quando time.Time) error {
	p, ok := s.pendencias[id]
	if !ok || p.Status != workflow.StatusPendente {
		return repo.ErrNotFound
	}
	p.Status = workflow.StatusFinalizada
	p.FinalizadaEm = &quando
	p.FinalizadaPor = &finalizadaPor
	s.pendencias[id] = p
	return nil
}

type fixture struct {
	handler    *Handler
	router     chi.Router
	usuarios   *stubUsuarios
	sites      *stubSites
	pendencias *stubPendencias
	admin      repo.Usuario
	usuario    repo.Usuario
	site       repo.Site
	pendencia  repo.Pendencia
}

func newFixture() *fixture {
	usuarios := &stubUsuarios{usuarios: map[uuid.UUID]repo.Usuario{}}
	sites := &stubSites{sites: map[uuid.UUID]repo.Site{}}
	pendencias := &stubPendencias{pendencias: map[uuid.UUID]repo.Pendencia{}}

	admin := repo.Usuario{ID: uuid.New(), Email: "admin@example.com", Papel: workflow.PapelAdmin, Aprovado: true}
	usuario := repo.Usuario{ID: uuid.New(), Email: "campo@example.com", Papel: workflow.PapelUser, Aprovado: true}
	usuarios.usuarios[admin.ID] = admin
	usuarios.usuarios[usuario.ID] = usuario

	site := repo.Site{ID: uuid.New(), Nome: "SPI-001", Latitude: -5.09, Longitude: -42.8, Aprovado: true}
	sites.sites[site.ID] = site

	pendencia := repo.Pendencia{
		ID:        uuid.New(),
		Site:      site.Nome,
		Tipo:      workflow.TipoEnergia,
		Subtipo:   "Retificador",
		Status:    workflow.StatusPendente,
		CriadoPor: usuario.ID,
	}
	pendencias.pendencias[pendencia.ID] = pendencia

	h := &Handler{workflow: workflow.NewService(usuarios, sites, pendencias)}

	r := chi.NewRouter()
	r.Get("/sites/aprovados", h.ListSitesAprovados)
	r.Get("/pendencias", h.ListPendencias)
	r.Post("/pendencias", h.CriarPendencia)
	r.Get("/admin/usuarios", h.ListUsuarios)
	r.Post("/admin/usuarios/{id}/aprovar", h.AprovarUsuario)
	r.Post("/admin/usuarios/{id}/rejeitar", h.RejeitarUsuario)
	r.Get("/admin/sites", h.ListSites)
	r.Post("/admin/sites", h.CadastrarSite)
	r.Post("/admin/sites/{id}/aprovar", h.AprovarSite)
	r.Post("/admin/sites/{id}/rejeitar", h.RejeitarSite)
	r.Post("/admin/pendencias/{id}/finalizar", h.FinalizarPendencia)

	return &fixture{
		handler:    h,
		router:     r,
		usuarios:   usuarios,
		sites:      sites,
		pendencias: pendencias,
		admin:      admin,
		usuario:    usuario,
		site:       site,
		pendencia:  pendencia,
	}
}

func withAuth(req *http.Request, u repo.Usuario) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeySubject, u.ID.String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyPapel, u.Papel)
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyAprovado, u.Aprovado)
	return req.WithContext(ctx)
}

func requestBody(body any) *bytes.Buffer {
	if body == nil {
		return bytes.NewBuffer(nil)
	}
	b, _ := json.Marshal(body)
	return bytes.NewBuffer(b)
}

func TestHandlers(t *testing.T) {
	fx := newFixture()

	novoUsuario := repo.Usuario{ID: uuid.New(), Email: "novo@example.com", Papel: workflow.PapelUser}
	fx.usuarios.usuarios[novoUsuario.ID] = novoUsuario

	tests := []struct {
		name   string
		ator   repo.Usuario
		method string
		path   string
		body   any
		status int
	}{
		{"sites aprovados", fx.usuario, http.MethodGet, "/sites/aprovados", nil, http.StatusOK},
		{"pendencias", fx.usuario, http.MethodGet, "/pendencias", nil, http.StatusOK},
		{"criar pendencia", fx.usuario, http.MethodPost, "/pendencias", map[string]any{"site": "SPI-001", "tipo": "Arcon", "subtipo": "Compressor", "observacoes": "gás baixo"}, http.StatusCreated},
		{"criar pendencia tipo invalido", fx.usuario, http.MethodPost, "/pendencias", map[string]any{"site": "SPI-001", "tipo": "Hidraulica", "subtipo": "X"}, http.StatusBadRequest},
		{"criar pendencia site desconhecido", fx.usuario, http.MethodPost, "/pendencias", map[string]any{"site": "SPI-999", "tipo": "Arcon", "subtipo": "Compressor"}, http.StatusBadRequest},
		{"listar usuarios", fx.admin, http.MethodGet, "/admin/usuarios", nil, http.StatusOK},
		{"listar usuarios sem admin", fx.usuario, http.MethodGet, "/admin/usuarios", nil, http.StatusForbidden},
		{"aprovar usuario", fx.admin, http.MethodPost, "/admin/usuarios/" + novoUsuario.ID.String() + "/aprovar", nil, http.StatusOK},
		{"aprovar usuario id invalido", fx.admin, http.MethodPost, "/admin/usuarios/nao-uuid/aprovar", nil, http.StatusBadRequest},
		{"aprovar usuario inexistente", fx.admin, http.MethodPost, "/admin/usuarios/" + uuid.NewString() + "/aprovar", nil, http.StatusNotFound},
		{"rejeitar admin", fx.admin, http.MethodPost, "/admin/usuarios/" + fx.admin.ID.String() + "/rejeitar", nil, http.StatusForbidden},
		{"listar sites", fx.admin, http.MethodGet, "/admin/sites", nil, http.StatusOK},
		{"cadastrar site", fx.admin, http.MethodPost, "/admin/sites", map[string]any{"name": "SPI-002", "latitude": "-5.1", "longitude": "-42.9"}, http.StatusCreated},
		{"cadastrar site latitude texto", fx.admin, http.MethodPost, "/admin/sites", map[string]any{"name": "SPI-003", "latitude": "norte", "longitude": "-42.9"}, http.StatusBadRequest},
		{"cadastrar site latitude fora da faixa", fx.admin, http.MethodPost, "/admin/sites", map[string]any{"name": "SPI-004", "latitude": "120", "longitude": "-42.9"}, http.StatusBadRequest},
		{"cadastrar site sem admin", fx.usuario, http.MethodPost, "/admin/sites", map[string]any{"name": "SPI-005", "latitude": "0", "longitude": "0"}, http.StatusForbidden},
		{"aprovar site", fx.admin, http.MethodPost, "/admin/sites/" + fx.site.ID.String() + "/aprovar", nil, http.StatusOK},
		{"rejeitar site inexistente", fx.admin, http.MethodPost, "/admin/sites/" + uuid.NewString() + "/rejeitar", nil, http.StatusNotFound},
		{"finalizar sem admin", fx.usuario, http.MethodPost, "/admin/pendencias/" + fx.pendencia.ID.String() + "/finalizar", nil, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, requestBody(tc.body))
			req = withAuth(req, tc.ator)
			rec := httptest.NewRecorder()

			fx.router.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("%s %s: expected %d got %d (%s)", tc.method, tc.path, tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFinalizarPendenciaHandler(t *testing.T) {
	fx := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/pendencias/"+fx.pendencia.ID.String()+"/finalizar", nil)
	req = withAuth(req, fx.admin)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Pendencia repo.Pendencia `json:"pendencia"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Pendencia.Status != workflow.StatusFinalizada {
		t.Fatalf("status esperado finalizada, veio %s", envelope.Data.Pendencia.Status)
	}
	if envelope.Data.Pendencia.FinalizadaEm == nil || envelope.Data.Pendencia.FinalizadaPor == nil {
		t.Fatal("finished_at e finished_by devem vir preenchidos")
	}

	// repetir a finalização responde conflito
	req = httptest.NewRequest(http.MethodPost, "/admin/pendencias/"+fx.pendencia.ID.String()+"/finalizar", nil)
	req = withAuth(req, fx.admin)
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCriarPendenciaRegistraAutor(t *testing.T) {
	fx := newFixture()

	body := map[string]any{"site": "SPI-001", "tipo": "Energia", "subtipo": "QM", "observacoes": "disjuntor desarmando"}
	req := httptest.NewRequest(http.MethodPost, "/pendencias", requestBody(body))
	req = withAuth(req, fx.usuario)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Pendencia repo.Pendencia `json:"pendencia"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Pendencia.CriadoPor != fx.usuario.ID {
		t.Fatal("created_by deveria ser o autor autenticado")
	}
	if envelope.Data.Pendencia.Status != workflow.StatusPendente {
		t.Fatalf("status esperado pendente, veio %s", envelope.Data.Pendencia.Status)
	}
}
