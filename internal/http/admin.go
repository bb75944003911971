package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

// ListUsuarios devolve todas as contas para a fila de aprovação.
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	users, err := h.workflow.ListarUsuarios(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// AprovarUsuario libera a conta indicada e devolve a lista atualizada.
func (h *Handler) AprovarUsuario(w http.ResponseWriter, r *http.Request) {
	h.setAprovacaoUsuario(w, r, true)
}

// RejeitarUsuario revoga a aprovação da conta indicada.
func (h *Handler) RejeitarUsuario(w http.ResponseWriter, r *http.Request) {
	h.setAprovacaoUsuario(w, r, false)
}

func (h *Handler) setAprovacaoUsuario(w http.ResponseWriter, r *http.Request, aprovado bool) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if aprovado {
		err = h.workflow.AprovarUsuario(r.Context(), ator, id)
	} else {
		err = h.workflow.RejeitarUsuario(r.Context(), ator, id)
	}
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	users, err := h.workflow.ListarUsuarios(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ListSites devolve todos os sites, inclusive os não aprovados.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	sites, err := h.workflow.ListarSites(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// ListSitesAprovados devolve o universo selecionável para novas pendências.
func (h *Handler) ListSitesAprovados(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	sites, err := h.workflow.ListarSitesAprovados(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// CadastrarSite cria site já aprovado. Coordenadas chegam como texto
// decimal e são validadas antes de chegar ao núcleo.
func (h *Handler) CadastrarSite(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	var payload struct {
		Nome        string  `json:"name"`
		Latitude    string  `json:"latitude"`
		Longitude   string  `json:"longitude"`
		Observacoes *string `json:"observacoes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(payload.Latitude), 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "latitude inválida", nil)
		return
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(payload.Longitude), 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "longitude inválida", nil)
		return
	}

	site, err := h.workflow.CadastrarSite(r.Context(), ator, workflow.CadastroSite{
		Nome:        payload.Nome,
		Latitude:    lat,
		Longitude:   lon,
		Observacoes: payload.Observacoes,
	})
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	sites, err := h.workflow.ListarSites(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"site": site, "sites": sites})
}

// AprovarSite libera o site para receber pendências.
func (h *Handler) AprovarSite(w http.ResponseWriter, r *http.Request) {
	h.setAprovacaoSite(w, r, true)
}

// RejeitarSite retira o site do universo selecionável.
func (h *Handler) RejeitarSite(w http.ResponseWriter, r *http.Request) {
	h.setAprovacaoSite(w, r, false)
}

func (h *Handler) setAprovacaoSite(w http.ResponseWriter, r *http.Request, aprovado bool) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if aprovado {
		err = h.workflow.AprovarSite(r.Context(), ator, id)
	} else {
		err = h.workflow.RejeitarSite(r.Context(), ator, id)
	}
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	sites, err := h.workflow.ListarSites(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sites": sites})
}
