// Command roletool grants roles to accounts from the operations side.
// ADMIN and OWNER cannot be self-assigned through the API; this tool is the
// only way to mint them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tripbroker/internal/app"
	"tripbroker/internal/config"
	"tripbroker/internal/domain"
	"tripbroker/internal/repository/postgres"
	"tripbroker/internal/service"
)

func main() {
	email := flag.String("email", "", "email of the target account (required)")
	role := flag.String("role", "", "role to grant: TRAVELER, CARRIER, ADMIN, OWNER (required)")
	admin := flag.Bool("admin", false, "set the admin flag alongside the role")
	create := flag.Bool("create", false, "create the account if it does not exist")
	name := flag.String("name", "", "display name when creating a new account")
	flag.Parse()

	if *email == "" || *role == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	adminLogRepo := postgres.NewAdminLogRepository(db)
	adminService := service.NewAdminService(postgres.NewTxManager(db), userRepo, adminLogRepo, nil, nil, nil, logger)

	targetRole := domain.Role(strings.ToUpper(*role))
	isAdmin := *admin || targetRole == domain.RoleAdmin || targetRole == domain.RoleOwner

	var user *domain.UserProfile
	if *create {
		user, err = adminService.PromoteOrCreate(ctx, *email, *name, targetRole, isAdmin)
	} else {
		user, err = adminService.GrantRole(ctx, *email, targetRole, isAdmin)
	}
	if err != nil {
		logger.Fatal("role grant failed", zap.String("email", *email), zap.Error(err))
	}

	fmt.Printf("granted %s (admin=%v) to %s (%s)\n", user.Role, user.IsAdmin, user.Email, user.ID)
}
