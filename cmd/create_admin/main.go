// create_admin bootstraps an administrator account. It prints the bcrypt
// hash to put in ADMIN_PASSWORD_HASH and a session token for API testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"creatememe/internal/db"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"
	"creatememe/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Admin", "display name")
	ttl := flag.Duration("ttl", time.Hour, "lifetime of the printed session token")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	if *email == "" {
		logger.Fatal("-email is required")
	}

	ctx := context.Background()
	pool := db.Connect(ctx, dsn)
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	u, created, err := users.UpsertByEmail(ctx, *email, *name, "", domain.RoleAdmin)
	if err != nil {
		logger.Fatal("upsert admin failed", "error", err)
	}
	if u.Status != domain.UserStatusActive {
		active := domain.UserStatusActive
		if u, err = users.Update(ctx, u.ID, domain.UserPatch{Status: &active}); err != nil {
			logger.Fatal("reactivate admin failed", "error", err)
		}
	}
	logger.Info("admin ready", "id", u.ID, "email", *email, "created", created)

	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("hash password failed", "error", err)
		}
		fmt.Printf("ADMIN_LOGIN_EMAIL=%s\nADMIN_PASSWORD_HASH=%s\n", *email, hash)
	}

	token, err := service.NewSessions(secret, *ttl).Issue(u.ID, u.Role)
	if err != nil {
		logger.Fatal("issue token failed", "error", err)
	}
	fmt.Printf("token=%s\n", token)
}
