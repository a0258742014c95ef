package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tricommerce/internal/config"
	"tricommerce/internal/repository"
	"tricommerce/internal/service"
	"tricommerce/pkg/database"
	"tricommerce/pkg/jwt"
	"tricommerce/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	email := flag.String("email", "", "admin email (defaults to admin.email)")
	password := flag.String("password", "", "new password, at least 6 characters")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *email == "" {
		*email = cfg.Admin.Email
	}
	if *password == "" {
		log.Fatal("-password is required")
	}

	db, err := database.ConnectDB(cfg.Database, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer database.Close(db)

	auth := service.NewAuthService(service.Deps{
		Store:     repository.NewGormStore(db),
		Logger:    log,
		TxTimeout: cfg.Database.TxTimeout,
	}, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL))

	if err := auth.ResetAdminPassword(context.Background(), *email, *password); err != nil {
		log.Fatal("reset admin password", zap.String("email", *email), zap.Error(err))
	}
	log.Info("admin password reset", zap.String("email", *email))
}
