package http

import (
	"encoding/json"
	"net/http"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

// ListPendencias devolve o histórico completo, aberto a toda conta aprovada.
func (h *Handler) ListPendencias(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	pendencias, err := h.workflow.ListarPendencias(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"pendencias": pendencias})
}

// CriarPendencia abre uma pendência em nome do ator autenticado.
func (h *Handler) CriarPendencia(w http.ResponseWriter, r *http.Request) {
	ator, err := h.ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	var payload struct {
		Site        string  `json:"site"`
		Tipo        string  `json:"tipo"`
		Subtipo     string  `json:"subtipo"`
		Observacoes string  `json:"observacoes"`
		FotoURL     *string `json:"foto_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	pendencia, err := h.workflow.CriarPendencia(r.Context(), ator, workflow.NovaPendencia{
		Site:        payload.Site,
		Tipo:        payload.Tipo,
		Subtipo:     payload.Subtipo,
		Observacoes: payload.Observacoes,
		FotoURL:     payload.FotoURL,
	})
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	pendencias, err := h.workflow.ListarPendencias(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"pendencia": pendencia, "pendencias": pendencias})
}

// FinalizarPendencia encerra a pendência indicada e devolve a lista
// atualizada. Pendência já finalizada responde INVALID_TRANSITION.
func (h *Handler) FinalizarPendencia(w http.ResponseWriter, r *http.Request) {
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

	pendencia, err := h.workflow.FinalizarPendencia(r.Context(), ator, id)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	pendencias, err := h.workflow.ListarPendencias(r.Context(), ator)
	if err != nil {
		mapWorkflowError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"pendencia": pendencia, "pendencias": pendencias})
}
