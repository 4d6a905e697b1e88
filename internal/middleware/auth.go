package middleware

import (
	"context"  // Context for repository calls
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"blog_system/internal/domain"     // Importing domain models
	"blog_system/internal/repository" // Repository errors
	"blog_system/internal/session"    // Flash categories

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// UserLoader resolves a user by id
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
}

// LoadUser resolves the session's user id to a row on each request
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if id := s.UserID(); id != 0 {
			user, err := users.GetByID(c.Request.Context(), id)
			switch {
			case err == nil:
				c.Set(userKey, user) // Store the current user in context
			case errors.Is(err, repository.ErrNotFound):
				s.ForgetUser() // User row is gone, drop the stale id
				if err := SaveSession(c); err != nil {
					logrus.WithError(err).Error("Failed to save session")
				}
			default:
				logrus.WithFields(logrus.Fields{
					"user_id": id,
					"error":   err.Error(),
				}).Warn("Failed to load current user")
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged in user or nil
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// RequireLogin redirects anonymous visitors to the login page
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			GetSession(c).AddFlash(session.FlashInfo, "Please log in to access this page.")
			if err := SaveSession(c); err != nil {
				logrus.WithError(err).Error("Failed to save session")
			}
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next() // Logged in, proceed to the handler
	}
}
