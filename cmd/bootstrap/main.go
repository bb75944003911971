package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/auth"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/config"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/db"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/repo"
	"github.com/lucivantrabalho-bot/EQUIPEINFRASPI/internal/service"
)

// bootstrap cria a conta administradora inicial direto no banco, como
// alternativa offline à rota /setup/admin.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email = fs.String("email", "", "e-mail do admin")
		senha = fs.String("senha", "", "senha do admin")
		nome  = fs.String("nome", "", "nome exibido")
	)

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if err := run(*email, *senha, *nome); err != nil {
		log.Fatal().Err(err).Msg("falha ao provisionar admin")
	}
}

func run(email, senha, nome string) error {
	if email == "" || senha == "" || nome == "" {
		return errors.New("email, senha e nome são obrigatórios")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	repository := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(repository, nil, jwtManager, cfg.JWTRefreshTTL)

	user, err := authService.CreateAdmin(ctx, email, senha, nome)
	if err != nil {
		return err
	}

	encoded, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
