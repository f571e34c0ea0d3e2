// Command createsuperuser creates an active staff account with superuser rights.
// When -password is omitted a random one is generated and printed once.
//
//	createsuperuser -email admin@example.com -password secret -name Admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/crypto"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/repository"
	"github.com/recipebox/recipe-api/internal/service"
)

func main() {
	email := flag.String("email", "", "email address of the new superuser")
	password := flag.String("password", "", "password of the new superuser")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	cfg := config.Load()

	generated := ""
	if *password == "" {
		var err error
		generated, err = crypto.GeneratePassword(20)
		if err != nil {
			slog.Error("generating password failed", "error", err)
			os.Exit(1)
		}
		*password = generated
	}

	if err := run(cfg, model.CreateUserRequest{Email: *email, Password: *password, Name: *name}); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			for field, msgs := range verr.Fields {
				for _, msg := range msgs {
					fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
				}
			}
			os.Exit(2)
		}
		slog.Error("creating superuser failed", "error", err)
		os.Exit(1)
	}

	if generated != "" {
		fmt.Printf("generated password: %s\n", generated)
	}
}

func run(cfg config.Config, req model.CreateUserRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
	}

	auth := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewTokenRepository(db),
		crypto.NewHasher(crypto.DefaultHashParams()),
	)

	user, err := auth.CreateSuperuser(ctx, req)
	if err != nil {
		return err
	}

	slog.Info("superuser created", "email", user.Email)
	return nil
}
