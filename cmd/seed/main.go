package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-board/config"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-board/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

type seedConfig struct {
	AdminID       string `env:"SEED_ADMIN_ID" envDefault:"admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD,required"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	var seed seedConfig
	if err := env.Parse(&seed); err != nil {
		log.Fatalf("seed config: %v", err)
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{AppName: cfg.AppName + "-seed", MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	hash, err := helpers.NewBcryptHasher(0).Hash(seed.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := pginfra.NewStore(pool).Users()
	err = users.Create(ctx, &entity.User{
		UserID:       seed.AdminID,
		PasswordHash: hash,
		Email:        seed.AdminEmail,
		Admin:        true,
		State:        entity.StateActive,
		CreatedBy:    entity.SystemActor,
		UpdatedBy:    entity.SystemActor,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		fmt.Printf("admin %q already exists\n", seed.AdminID)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: user_id=%s\n", seed.AdminID)
}
