package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"blog_system/internal/forms"      // Form errors
	"blog_system/internal/middleware" // Session and user middleware
	"blog_system/internal/session"    // Flash categories

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// render fills in the values every view expects, persists the session and
// writes the template
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	s := middleware.GetSession(c)
	data["flashes"] = s.PopFlashes()                // Shown once
	data["currentUser"] = middleware.CurrentUser(c) // nil for visitors
	data["csrfToken"] = s.CSRFToken()               // Echoed by every form
	if _, ok := data["errors"]; !ok {
		data["errors"] = forms.Errors{}
	}
	if err := middleware.SaveSession(c); err != nil {
		logrus.WithError(err).Error("Failed to save session")
	}
	c.HTML(status, name, data)
}

// redirect persists the session and sends the browser to path with a GET
func redirect(c *gin.Context, path string) {
	if err := middleware.SaveSession(c); err != nil {
		logrus.WithError(err).Error("Failed to save session")
	}
	c.Redirect(http.StatusSeeOther, path)
}

func flash(c *gin.Context, category, message string) {
	middleware.GetSession(c).AddFlash(category, message)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not found"})
}

func forbidden(c *gin.Context) {
	render(c, http.StatusForbidden, "403.html", gin.H{"title": "Forbidden"})
}

func serverError(c *gin.Context) {
	render(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
}

func badRequest(c *gin.Context) {
	render(c, http.StatusBadRequest, "error.html", gin.H{"title": "Error"})
}

func tooLarge(c *gin.Context) {
	flash(c, session.FlashDanger, "File must be 20 MiB or smaller.")
	render(c, http.StatusRequestEntityTooLarge, "error.html", gin.H{"title": "Error"})
}

// parseID reads the :id path parameter; anything but a positive integer is treated as missing
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
