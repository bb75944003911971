package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/auth"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyPapel    contextKey = "papel"
	ContextKeyAprovado contextKey = "aprovado"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyPapel, claims.Papel)
			ctx = context.WithValue(ctx, ContextKeyAprovado, claims.Aprovado)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetPapel recupera o papel do contexto.
func GetPapel(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyPapel).(string)
	return val
}

// GetAprovado recupera a flag de aprovação do contexto.
func GetAprovado(ctx context.Context) bool {
	val, _ := ctx.Value(ContextKeyAprovado).(bool)
	return val
}

// RequireAprovado bloqueia contas ainda pendentes de aprovação.
// Com conta pendente só o logout é útil; os painéis ficam vedados.
func RequireAprovado(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetAprovado(r.Context()) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "conta aguardando aprovação")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin garante papel admin aprovado.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPapel(r.Context()) != workflow.PapelAdmin || !GetAprovado(r.Context()) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
