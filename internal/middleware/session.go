package middleware

import (
	"blog_system/internal/session" // Server-side sessions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Context keys
const (
	sessionKey        = "session"
	sessionManagerKey = "sessionManager"
	userKey           = "currentUser"
)

// Sessions loads the visitor's session into the context
func Sessions(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionManagerKey, m)          // Keep the manager for SaveSession
		c.Set(sessionKey, m.Load(c.Request)) // Missing or forged cookies give an empty session
		c.Next()
		// Handlers that wrote nothing still get their changes persisted
		if !c.Writer.Written() {
			if err := SaveSession(c); err != nil {
				logrus.WithError(err).Error("Failed to save session")
			}
		}
	}
}

// GetSession returns the request's session, never nil
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	s := &session.Session{}
	c.Set(sessionKey, s)
	return s
}

// SaveSession persists pending session changes. Call before writing the response.
func SaveSession(c *gin.Context) error {
	v, ok := c.Get(sessionManagerKey)
	if !ok {
		return nil
	}
	m := v.(*session.Manager)
	return m.Save(c.Request.Context(), c.Writer, GetSession(c))
}
