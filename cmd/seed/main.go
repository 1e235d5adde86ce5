// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the admin user (admin@example.com) already
// exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"identity-service/internal/config"
	"identity-service/internal/db"
	"identity-service/internal/security"
	userdomain "identity-service/internal/user/domain"
	userrepo "identity-service/internal/user/repository"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin@1234"
	devEmail      = "dev@example.com"
	devPassword   = "Dev@12345"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	hasher := security.NewHasher(cfg.BcryptCost)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed: lookup admin: %v", err)
	}
	if existing != nil {
		log.Println("seed: admin user already exists, nothing to do")
		return
	}

	if err := createUser(ctx, users, hasher, adminEmail, adminPassword, "Admin User", userdomain.RoleAdmin); err != nil {
		log.Fatalf("seed: admin: %v", err)
	}
	if err := createUser(ctx, users, hasher, devEmail, devPassword, "Dev User", userdomain.RoleUser); err != nil {
		log.Fatalf("seed: dev user: %v", err)
	}
	log.Println("seed: done")
}

func createUser(ctx context.Context, users userrepo.Repository, hasher *security.Hasher, email, password, name string, role userdomain.Role) error {
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return users.Create(ctx, &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
