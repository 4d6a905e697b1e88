package api

import (
	"fmt"           // Error wrapping
	"html/template" // Template helpers
	"net/http"      // HTTP methods

	"blog_system/internal/forms"      // Upload limits
	"blog_system/internal/middleware" // Custom package for middleware
	"blog_system/internal/storage"    // Local upload directory
	"blog_system/internal/web"        // Embedded views

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// LoginPath is where anonymous visitors are sent from guarded routes
const LoginPath = "/login"

// maxBodySize leaves room for the text fields next to a maximum-size image
const maxBodySize = forms.MaxImageSize + 1<<20

var (
	get     = []string{http.MethodGet}
	post    = []string{http.MethodPost}
	getPost = []string{http.MethodGet, http.MethodPost}
)

// route is one entry of the routing table. Entries with auth set are
// wrapped in the login guard.
type route struct {
	methods []string
	path    string
	auth    bool
	handler gin.HandlerFunc
}

func (app *App) routes() []route {
	return []route{
		{get, "/", false, ListArticlesHandler(app)},
		{getPost, "/add_article", true, AddArticleHandler(app)},
		{post, "/update_article/:id", true, UpdateArticleHandler(app)},
		{getPost, "/edit_article/:id", true, EditArticleHandler(app)},
		{post, "/delete_article/:id", true, DeleteArticleHandler(app)},
		{getPost, "/search", false, SearchHandler(app)},
		{getPost, "/register", false, RegisterHandler(app)},
		{getPost, LoginPath, false, LoginHandler(app)},
		{get, "/logout", false, LogoutHandler()},
		{get, "/about", false, AboutHandler()},
		{get, "/sponsors", false, SponsorsHandler()},
	}
}

// NewRouter builds the gin engine serving the blog
func NewRouter(app *App) (*gin.Engine, error) {
	tmpl, err := web.Templates(template.FuncMap{
		"imageURL": func(name string) string {
			if name == "" {
				return ""
			}
			return app.Uploads.URL(name)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Logger(), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithField("panic", recovered).Error("Recovered from panic")
		serverError(c)
		c.Abort()
	}))
	r.Use(
		middleware.Sessions(app.Sessions),           // Load the visitor's session
		middleware.LoadUser(app.Users),              // Resolve the logged in user
		middleware.LimitBody(maxBodySize, tooLarge), // Cap the body before any form is parsed
		middleware.CSRF(badRequest),                 // Reject forged form posts
	)

	// Uploaded images are served from disk only for the local backend
	if local, ok := app.Uploads.(*storage.LocalStorage); ok {
		r.Static("/static/uploads", local.Dir())
	}

	for _, rt := range app.routes() {
		handlers := []gin.HandlerFunc{}
		if rt.auth {
			handlers = append(handlers, middleware.RequireLogin(LoginPath))
		}
		handlers = append(handlers, rt.handler)
		for _, method := range rt.methods {
			r.Handle(method, rt.path, handlers...)
		}
	}
	r.NoRoute(NotFoundHandler())
	return r, nil
}
