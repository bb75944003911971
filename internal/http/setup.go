package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SetupAdmin provisiona a conta administradora inicial. A rota só funciona
// quando SETUP_TOKEN está configurado e o chamador apresenta o mesmo valor
// no header X-Setup-Token. Após o primeiro admin, o serviço recusa novas
// chamadas com CONFLICT.
func (h *Handler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	if h.cfg.SetupToken == "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "rota indisponível", nil)
		return
	}

	provided := r.Header.Get("X-Setup-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cfg.SetupToken)) != 1 {
		log.Warn().Str("ip", r.RemoteAddr).Msg("setup admin com token inválido")
		WriteError(w, http.StatusUnauthorized, "AUTH", "token de setup inválido", nil)
		return
	}

	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
		Nome  string `json:"nome"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	user, err := h.authService.CreateAdmin(r.Context(), payload.Email, payload.Senha, payload.Nome)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	log.Info().Str("email", user.Email).Msg("admin inicial provisionado")
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}
