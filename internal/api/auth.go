package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"blog_system/internal/auth"       // Registration and login
	"blog_system/internal/forms"      // Form binding and validation
	"blog_system/internal/middleware" // Session access
	"blog_system/internal/session"    // Flash categories

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RegisterHandler shows the sign-up form and creates accounts from it
func RegisterHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "register.html", gin.H{"title": "Register", "form": &forms.RegisterForm{}})
			return
		}
		form, errs := forms.BindRegister(c)
		if errs == nil {
			errs = form.Validate()
		}
		view := gin.H{"title": "Register", "form": form}
		if errs != nil {
			view["errors"] = errs
			render(c, http.StatusUnprocessableEntity, "register.html", view)
			return
		}

		_, err := app.Auth.Register(c.Request.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			flash(c, session.FlashSuccess, "Registration successful. You can now log in.")
			redirect(c, "/login")
		case errors.Is(err, auth.ErrUsernameTaken):
			flash(c, session.FlashDanger, "Username already exists. Please choose a different username.")
			render(c, http.StatusConflict, "register.html", view)
		default:
			// Never log the password
			logrus.WithFields(logrus.Fields{
				"username": form.Username,
				"error":    err.Error(),
			}).Error("Failed to register user")
			flash(c, session.FlashDanger, "Registration failed. Please try again.")
			render(c, http.StatusInternalServerError, "register.html", view)
		}
	}
}

// LoginHandler signs a user in. Unknown usernames and wrong passwords get
// the same response.
func LoginHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": &forms.LoginForm{}})
			return
		}
		form, errs := forms.BindLogin(c)
		if errs == nil {
			errs = form.Validate()
		}
		view := gin.H{"title": "Log in", "form": form}
		if errs != nil {
			view["errors"] = errs
			render(c, http.StatusUnprocessableEntity, "login.html", view)
			return
		}

		user, err := app.Auth.Authenticate(c.Request.Context(), form.Username, form.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			errs = forms.Errors{}
			errs.Add("form", "Invalid username or password.")
			view["errors"] = errs
			render(c, http.StatusUnauthorized, "login.html", view)
			return
		}
		if err != nil {
			logrus.WithError(err).Error("Failed to authenticate user")
			flash(c, session.FlashDanger, "Login failed. Please try again.")
			render(c, http.StatusInternalServerError, "login.html", view)
			return
		}

		middleware.GetSession(c).Login(user.ID) // Session id is rotated on save
		logrus.WithField("user_id", user.ID).Info("User logged in")
		redirect(c, "/")
	}
}

// LogoutHandler ends the session
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := middleware.CurrentUser(c); user != nil {
			logrus.WithField("user_id", user.ID).Info("User logged out")
		}
		middleware.GetSession(c).Destroy()
		redirect(c, "/")
	}
}
