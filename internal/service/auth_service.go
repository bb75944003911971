package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/auth"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/repo"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/util"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/workflow"
)

// Audience único do portal; mantido no token e na chave de refresh.
const Audience = "portal"

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
	// ErrEmailInvalido indica e-mail malformado no cadastro.
	ErrEmailInvalido = errors.New("email inválido")
	// ErrSenhaFraca indica senha abaixo do mínimo exigido.
	ErrSenhaFraca = errors.New("senha deve ter pelo menos 8 caracteres")
	// ErrNomeObrigatorio indica nome vazio no cadastro.
	ErrNomeObrigatorio = errors.New("nome obrigatório")
	// ErrAdminJaExiste indica que o provisionamento inicial já aconteceu.
	ErrAdminJaExiste = errors.New("conta administradora já provisionada")
)

// AuthRepository é o recorte do Record Store usado pela autenticação.
type AuthRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	InsertUsuario(ctx context.Context, arg repo.InsertUsuarioParams) (repo.Usuario, error)
	ExisteAdmin(ctx context.Context) (bool, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	RotateRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// RedisCommander é o recorte do cliente Redis usado para estado de sessão.
type RedisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra cadastro, autenticação e sessões.
type AuthService struct {
	repo       AuthRepository
	redis      RedisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r AuthRepository, redisClient RedisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// PerfilUsuario descreve a conta autenticada e o estado do gate de acesso.
type PerfilUsuario struct {
	ID       string              `json:"id"`
	Nome     string              `json:"name"`
	Email    string              `json:"email"`
	Papel    string              `json:"role"`
	Aprovado bool                `json:"approved"`
	Gate     workflow.EstadoGate `json:"gate"`
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Papel         string
	Aprovado      bool
	Profile       *PerfilUsuario
	RefreshHash   string
	RefreshExpiry time.Time
}

// SignUp cria uma conta nova, sempre com papel user e aprovação pendente.
// Não há autologin: o gate só libera painel após aprovação de um admin.
func (s *AuthService) SignUp(ctx context.Context, email, senha, nome string) (repo.Usuario, error) {
	if err := util.ValidateEmail(email); err != nil {
		return repo.Usuario{}, ErrEmailInvalido
	}
	if err := util.ValidatePassword(senha); err != nil {
		return repo.Usuario{}, ErrSenhaFraca
	}
	if err := util.RequireString(nome, "nome"); err != nil {
		return repo.Usuario{}, ErrNomeObrigatorio
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return repo.Usuario{}, err
	}

	return s.repo.InsertUsuario(ctx, repo.InsertUsuarioParams{
		Email:     email,
		Nome:      nome,
		SenhaHash: hash,
		Papel:     workflow.PapelUser,
		Aprovado:  false,
	})
}

// CreateAdmin provisiona a conta administradora inicial (papel admin,
// já aprovada). Recusa quando já existe qualquer admin cadastrado.
func (s *AuthService) CreateAdmin(ctx context.Context, email, senha, nome string) (repo.Usuario, error) {
	if err := util.ValidateEmail(email); err != nil {
		return repo.Usuario{}, ErrEmailInvalido
	}
	if err := util.ValidatePassword(senha); err != nil {
		return repo.Usuario{}, ErrSenhaFraca
	}
	if err := util.RequireString(nome, "nome"); err != nil {
		return repo.Usuario{}, ErrNomeObrigatorio
	}

	existe, err := s.repo.ExisteAdmin(ctx)
	if err != nil {
		return repo.Usuario{}, err
	}
	if existe {
		return repo.Usuario{}, ErrAdminJaExiste
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return repo.Usuario{}, err
	}

	user, err := s.repo.InsertUsuario(ctx, repo.InsertUsuarioParams{
		Email:     email,
		Nome:      nome,
		SenhaHash: hash,
		Papel:     workflow.PapelAdmin,
		Aprovado:  true,
	})
	if err != nil {
		// índice único parcial: outra chamada provisionou entre a checagem e o INSERT
		if errors.Is(err, repo.ErrAdminJaExiste) {
			return repo.Usuario{}, ErrAdminJaExiste
		}
		return repo.Usuario{}, err
	}
	return user, nil
}

// SignIn autentica por e-mail e senha. Conta não aprovada autentica
// normalmente; é o gate no perfil que decide qual superfície liberar.
func (s *AuthService) SignIn(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: conta não encontrada")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.loginFromUser(ctx, user)
}

func (s *AuthService) loginFromUser(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), Audience, user.Papel, user.Aprovado)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       user.ID,
		Papel:         user.Papel,
		Aprovado:      user.Aprovado,
		Profile:       perfilFromUser(user),
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// Refresh troca refresh token por novos tokens, relendo o cadastro: mudanças
// de papel ou aprovação passam a valer a partir daqui.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || util.Now().After(record.Expiracao) || record.Audience != Audience {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(Audience, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetUsuarioByID(ctx, record.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	result, err := s.loginFromUser(ctx, user)
	if err != nil {
		return nil, err
	}

	// Revoga token anterior (DB + Redis)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	redisKey := auth.RefreshRedisKey(Audience, hash)
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe retorna o perfil e o estado do gate para o subject autenticado.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*PerfilUsuario, error) {
	user, err := s.repo.GetUsuarioByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	return perfilFromUser(user), nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	// grava e revoga os anteriores numa única transação (sessão única por conta)
	_, err := s.repo.RotateRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		Audience:  Audience,
		TokenHash: hash,
		Expiracao: expires,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(Audience, hash), "active", time.Until(expires)).Err()
}

func perfilFromUser(user repo.Usuario) *PerfilUsuario {
	return &PerfilUsuario{
		ID:       user.ID.String(),
		Nome:     user.Nome,
		Email:    user.Email,
		Papel:    user.Papel,
		Aprovado: user.Aprovado,
		Gate:     workflow.EstadoPara(user.Papel, user.Aprovado),
	}
}
