// Package api serves the blog's HTML pages.
package api

import (
	"context" // Context for store calls

	"blog_system/internal/domain"     // Importing domain models
	"blog_system/internal/middleware" // Session and user middleware
	"blog_system/internal/session"    // Server-side sessions
	"blog_system/internal/storage"    // Image uploads
)

// ArticleStore is what the article handlers need from persistence
type ArticleStore interface {
	Create(ctx context.Context, a *domain.Article) error
	GetByID(ctx context.Context, id uint) (*domain.Article, error)
	Update(ctx context.Context, a *domain.Article) error
	Delete(ctx context.Context, id uint) error
	ListNewest(ctx context.Context) ([]domain.Article, error)
	SearchTitle(ctx context.Context, q string) ([]domain.Article, error)
	ImageInUse(ctx context.Context, name string) (bool, error)
}

// Authenticator registers and signs in users
type Authenticator interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// App carries the dependencies shared by every handler
type App struct {
	Articles ArticleStore          // Article persistence
	Users    middleware.UserLoader // Resolves the session's user
	Auth     Authenticator         // Registration and login
	Uploads  storage.Uploader      // Where article images go
	Sessions *session.Manager      // Cookie-backed server-side sessions
}
