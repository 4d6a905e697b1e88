package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AboutHandler renders the information page
func AboutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "information.html", gin.H{"title": "About", "soft": "gin", "proglang": "Go"})
	}
}

// SponsorsHandler renders the sponsors page
func SponsorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "sponsors.html", gin.H{"title": "Sponsors"})
	}
}

// NotFoundHandler renders the not-found view for unknown paths
func NotFoundHandler() gin.HandlerFunc {
	return notFound
}
