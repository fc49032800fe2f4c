package echoServer

import (
	"path/filepath"

	"github.com/labstack/echo/v4"

	authctrl "booknexus/app/echoServer/controller/auth"
	bookctrl "booknexus/app/echoServer/controller/book"
	"booknexus/app/echoServer/guard"
)

type C struct {
	Auth *authctrl.Controller
	Book *bookctrl.Controller

	Users     guard.UserLoader
	JWTSecret string
	UploadDir string
}

func Register(e *echo.Echo, c C) {
	// Public
	e.POST("/auth/register", c.Auth.Register)
	e.POST("/auth/login", c.Auth.Login)

	e.GET("/books", c.Book.List)
	e.GET("/books/search", c.Book.Search)
	e.GET("/books/ai-search", c.Book.AISearch)
	e.GET("/books/:id/summary", c.Book.Summary)
	e.GET("/books/:id", c.Book.Detail)

	// Uploaded covers, immutable by filename
	up := e.Group("/uploads", CacheForever())
	up.Static("/", filepath.Dir(c.UploadDir))

	// Authenticated
	auth := e.Group("", guard.TokenVerifier(c.JWTSecret), guard.Identity(c.Users))
	auth.GET("/auth/profile", c.Auth.Profile)
	auth.PUT("/books/:id/checkout", c.Book.Checkout)
	auth.PUT("/books/:id/return", c.Book.Return)

	// Admin
	admin := auth.Group("", guard.Admin)
	admin.GET("/auth/users", c.Auth.ListUsers)
	admin.DELETE("/auth/librarians/:id", c.Auth.DeleteLibrarian)
	admin.POST("/books", c.Book.Create)
	admin.PUT("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)
}
