// Package main BookNexus API.
//
// @title           BookNexus API
// @version         1.0
// @description     Library management service (catalog, checkout, auth).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"booknexus/app/echoServer"
	authctrl "booknexus/app/echoServer/controller/auth"
	bookctrl "booknexus/app/echoServer/controller/book"
	"booknexus/app/echoServer/validation"
	"booknexus/config"
	bookrepo "booknexus/repository/book"
	checkoutrepo "booknexus/repository/checkout"
	coverrepo "booknexus/repository/cover"
	geminirepo "booknexus/repository/gemini"
	userrepo "booknexus/repository/user"
	authsvc "booknexus/service/auth"
	booksvc "booknexus/service/book"
	"booknexus/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB (runs migrations)
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := checkoutrepo.New(db)

	covers, err := coverrepo.New(cfg.UploadDir)
	if err != nil {
		log.Error("uploads dir init failed", "err", err)
		os.Exit(1)
	}

	var ai geminirepo.Repo = geminirepo.Noop{}
	if cfg.GeminiAPIKey != "" {
		ai = geminirepo.NewHTTP(cfg.GeminiAPIKey)
	} else {
		log.Warn("GEMINI_API_KEY not set, AI features disabled")
	}

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br, cr, covers, ai)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:  authC,
		Book:  bookC,
		Users: ur,

		JWTSecret: cfg.JWTSecret,
		UploadDir: cfg.UploadDir,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
