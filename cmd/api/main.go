package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"filekeeper/internal/config"
	"filekeeper/internal/database"
	"filekeeper/internal/middleware"
	"filekeeper/internal/modules/auth"
	"filekeeper/internal/modules/files"
	jwtsvc "filekeeper/internal/pkg/jwt"
	"filekeeper/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.VerifyTokenTTL)

	var mailer auth.Mailer
	if cfg.SMTPHost != "" {
		mailer = auth.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.PublicBaseURL)
	} else {
		log.Println("SMTP_HOST is empty, verification emails go to the log")
		mailer = auth.NewConsoleMailer(cfg.PublicBaseURL)
	}

	authService := auth.NewService(userRepo, tokens, mailer)
	authHandler := auth.NewHandler(authService)

	filesService := files.NewService(fileRepo, cfg.UploadDir, cfg.MaxUploadSize)
	filesHandler := files.NewHandler(filesService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens, userRepo))
		{
			authHandler.RegisterProtectedRoutes(protected)
			filesHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
