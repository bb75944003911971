package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/config"
	httpmiddleware "github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/http/middleware"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/repo"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/service"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	workflow      *workflow.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, workflowService *workflow.Service) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		workflow:      workflowService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.SignUp)
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})

		public.Post("/setup/admin", h.SetupAdmin)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Group(func(aprovado chi.Router) {
			aprovado.Use(httpmiddleware.RequireAprovado)
			aprovado.Get("/sites/aprovados", h.ListSitesAprovados)
			aprovado.Get("/pendencias", h.ListPendencias)
			aprovado.Post("/pendencias", h.CriarPendencia)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			admin.Route("/admin", func(a chi.Router) {
				a.Get("/usuarios", h.ListUsuarios)
				a.Post("/usuarios/{id}/aprovar", h.AprovarUsuario)
				a.Post("/usuarios/{id}/rejeitar", h.RejeitarUsuario)
				a.Get("/sites", h.ListSites)
				a.Post("/sites", h.CadastrarSite)
				a.Post("/sites/{id}/aprovar", h.AprovarSite)
				a.Post("/sites/{id}/rejeitar", h.RejeitarSite)
				a.Get("/pendencias", h.ListPendencias)
				a.Post("/pendencias/{id}/finalizar", h.FinalizarPendencia)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ator monta o Ator do workflow a partir das claims injetadas pelo middleware.
func (h *Handler) ator(r *http.Request) (workflow.Ator, error) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		return workflow.Ator{}, err
	}
	return workflow.Ator{
		ID:       subject,
		Papel:    httpmiddleware.GetPapel(r.Context()),
		Aprovado: httpmiddleware.GetAprovado(r.Context()),
	}, nil
}

// idFromURL extrai o parâmetro {id} da rota.
func idFromURL(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// mapWorkflowError converte erros do núcleo em respostas normalizadas.
// Nenhuma falha de mutação é engolida: tudo vira envelope de erro.
func mapWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, workflow.ErrTransicaoInvalida):
		WriteError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, workflow.ErrTipoInvalido),
		errors.Is(err, workflow.ErrSubtipoInvalido),
		errors.Is(err, workflow.ErrSiteNaoAprovado),
		errors.Is(err, workflow.ErrCoordenadaInvalida),
		errors.Is(err, workflow.ErrNomeObrigatorio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
