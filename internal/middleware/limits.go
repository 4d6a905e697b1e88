package middleware

import (
	"net/http" // HTTP status codes and MaxBytesReader

	"blog_system/internal/session" // Flash categories

	"github.com/gin-gonic/gin" // Gin web framework
)

// LimitBody caps the request body at n bytes. Requests that declare a
// larger body are handed to onTooLarge without reading it.
func LimitBody(n int64, onTooLarge gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			onTooLarge(c)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// CSRF rejects state-changing requests that do not echo the session's form token
func CSRF(onFailure gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		token := c.GetHeader("X-CSRF-Token")
		if token == "" {
			token = c.PostForm("csrf_token")
		}
		if !GetSession(c).ValidCSRFToken(token) {
			GetSession(c).AddFlash(session.FlashDanger, "The form expired. Please try again.")
			onFailure(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
