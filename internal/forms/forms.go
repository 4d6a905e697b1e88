// Package forms binds and validates the blog's HTML forms.
package forms

import (
	"errors"         // Error inspection
	"fmt"            // Message formatting
	"mime/multipart" // Uploaded files
	"net/http"       // Body size errors
	"path/filepath"  // Extension checks
	"reflect"        // Field name lookup
	"sort"           // Stable error output
	"strings"        // Input trimming

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Struct validation
)

// Upload limits for article images
const (
	MaxImageSize = 20 << 20 // 20 MiB
)

// AllowedImageExtensions are compared case-insensitively
var AllowedImageExtensions = []string{"jpg", "png", "jpeg"}

// Errors maps a form field to its messages
type Errors map[string][]string

// Add records a message for field
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for field
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e Errors) orNil() Errors {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ArticleForm is the publish/edit form
type ArticleForm struct {
	Title   string                `form:"title" validate:"notblank"`
	Content string                `form:"content" validate:"notblank"`
	Author  string                `form:"author" validate:"max=120"`
	Image   *multipart.FileHeader `form:"-"`
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	Username       string `form:"username" validate:"notblank,max=64"`
	Password       string `form:"password" validate:"notblank,min=6,max=25"`
	RepeatPassword string `form:"repeat_password" validate:"eqfield=Password"`
}

// LoginForm is the sign-in form
type LoginForm struct {
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"notblank,min=6,max=25"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("validate")
	// report fields by their form names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// overrides replaces the generic message for a field/tag pair
var overrides = map[string]map[string]string{
	"title":           {"notblank": "Please enter a title."},
	"repeat_password": {"eqfield": "Please repeat your password in order to proceed."},
}

func message(fe validator.FieldError) string {
	if m, ok := overrides[fe.Field()][fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "notblank":
		return "This field is required."
	case "min", "max":
		if fe.Field() == "password" {
			return "Field must be between 6 and 25 characters long."
		}
		return fmt.Sprintf("Field must be at most %s characters long.", fe.Param())
	case "eqfield":
		return "Fields do not match."
	default:
		return "Invalid value."
	}
}

func check(form any) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs.Add(fe.Field(), message(fe))
		}
	} else if err != nil {
		errs.Add("form", "Invalid form submission.")
	}
	return errs
}

// Validate checks the article fields and the optional image
func (f *ArticleForm) Validate() Errors {
	errs := check(f)
	if f.Image != nil {
		if f.Image.Size > MaxImageSize {
			errs.Add("image", "File must be 20 MiB or smaller.")
		}
		if !allowedImage(f.Image.Filename) {
			errs.Add("image", "format not allowed")
		}
	}
	return errs.orNil()
}

// Validate checks the registration fields
func (f *RegisterForm) Validate() Errors {
	return check(f).orNil()
}

// Validate checks the login fields
func (f *LoginForm) Validate() Errors {
	return check(f).orNil()
}

func allowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// BindArticle reads an ArticleForm from a urlencoded or multipart request.
// An oversized body is reported as an image error.
func BindArticle(c *gin.Context) (*ArticleForm, Errors) {
	f := &ArticleForm{} // Bind form fields into the struct
	if err := c.ShouldBind(f); err != nil {
		return f, bindErrors(err)
	}
	if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
		f.Image = fh // Optional, checked in Validate
	}
	return f, nil
}

// BindRegister reads a RegisterForm
func BindRegister(c *gin.Context) (*RegisterForm, Errors) {
	f := &RegisterForm{}
	if err := c.ShouldBind(f); err != nil {
		return f, bindErrors(err)
	}
	return f, nil
}

// BindLogin reads a LoginForm
func BindLogin(c *gin.Context) (*LoginForm, Errors) {
	f := &LoginForm{}
	if err := c.ShouldBind(f); err != nil {
		return f, bindErrors(err)
	}
	return f, nil
}

func bindErrors(err error) Errors {
	errs := Errors{}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		errs.Add("image", "File must be 20 MiB or smaller.")
		return errs
	}
	errs.Add("form", "Invalid form submission.")
	return errs
}
