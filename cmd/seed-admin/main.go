// Command seed-admin creates the admin account, or rotates its password when
// the account already exists. The password is read from ADMIN_PASSWORD so it
// does not appear in the process list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"clubsite/config"
	"clubsite/internal/adapters/auth"
	"clubsite/internal/repository/postgres"
	"clubsite/internal/services"
)

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	name := flag.String("name", os.Getenv("ADMIN_NAME"), "display name, defaults to the email (ADMIN_NAME)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: ADMIN_PASSWORD=... seed-admin -email admin@example.org [-name Admin]")
		os.Exit(2)
	}

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := services.NewAuthService(
		postgres.NewAdminUserRepository(db),
		auth.NewBcryptHasher(auth.DefaultCost),
		auth.NewJWT(cfg.JWTSecret),
		cfg.JWTExpiry,
		30*time.Second,
	)
	user, created, err := svc.ProvisionAdmin(context.Background(), *email, *name, password)
	if err != nil {
		logger.Error("provision admin failed", "email", *email, "err", err)
		os.Exit(1)
	}
	if created {
		logger.Info("admin created", "id", user.ID, "email", user.Email)
	} else {
		logger.Info("admin password rotated", "id", user.ID, "email", user.Email)
	}
}
