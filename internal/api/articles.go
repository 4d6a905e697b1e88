package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // Trimming form input

	"blog_system/internal/domain"     // Importing domain models
	"blog_system/internal/forms"      // Form binding and validation
	"blog_system/internal/middleware" // Current user
	"blog_system/internal/repository" // Repository errors
	"blog_system/internal/session"    // Flash categories
	"blog_system/internal/storage"    // Upload errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// ListArticlesHandler renders every article, newest first
func ListArticlesHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := app.Articles.ListNewest(c.Request.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list articles")
			serverError(c)
			return
		}
		render(c, http.StatusOK, "index.html", gin.H{"articles": articles})
	}
}

// AddArticleHandler shows the publish form and creates articles from it
func AddArticleHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "add_article.html", gin.H{"title": "New article", "form": &forms.ArticleForm{}})
			return
		}
		user := middleware.CurrentUser(c) // Set by RequireLogin's chain
		form, errs := forms.BindArticle(c)
		if errs == nil {
			errs = form.Validate()
		}
		if errs != nil {
			render(c, http.StatusUnprocessableEntity, "add_article.html", gin.H{"title": "New article", "form": form, "errors": errs})
			return
		}

		article := &domain.Article{
			Title:      form.Title,
			Content:    form.Content,
			AuthorName: optional(form.Author),
			UserID:     user.ID,
		}
		if form.Image != nil {
			name, err := app.Uploads.Save(c.Request.Context(), form.Image)
			if err != nil {
				failUpload(c, "add_article.html", gin.H{"title": "New article", "form": form}, err)
				return
			}
			article.Img = &name
		}
		if err := app.Articles.Create(c.Request.Context(), article); err != nil {
			discardUpload(c, app, article.Img, nil)
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Failed to add article")
			flash(c, session.FlashDanger, "Error adding article. Please try again.")
			render(c, http.StatusInternalServerError, "add_article.html", gin.H{"title": "New article", "form": form})
			return
		}
		logrus.WithFields(logrus.Fields{
			"article_id": article.ID,
			"user_id":    user.ID,
		}).Info("Article added")
		flash(c, session.FlashSuccess, "Article added successfully")
		redirect(c, "/")
	}
}

// UpdateArticleHandler applies the edit form. Only the exact owner may
// update; the admin role grants nothing here.
func UpdateArticleHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		article, ok := loadArticle(c, app)
		if !ok {
			return
		}
		user := middleware.CurrentUser(c)
		if !article.IsOwnedBy(user) {
			forbidden(c)
			return
		}

		form, errs := forms.BindArticle(c)
		if errs == nil {
			errs = form.Validate()
		}
		view := gin.H{"title": "Edit article", "article": article, "form": form}
		if errs != nil {
			flash(c, session.FlashDanger, "Error updating Post")
			view["errors"] = errs
			render(c, http.StatusUnprocessableEntity, "edit_article.html", view)
			return
		}

		previousImg := article.Img
		article.Title = form.Title
		article.Content = form.Content
		article.AuthorName = optional(form.Author)
		if form.Image != nil {
			name, err := app.Uploads.Save(c.Request.Context(), form.Image)
			if err != nil {
				failUpload(c, "edit_article.html", view, err)
				return
			}
			article.Img = &name // Replaces the previous image
		}
		if err := app.Articles.Update(c.Request.Context(), article); err != nil {
			discardUpload(c, app, article.Img, previousImg)
			article.Img = previousImg // The row still points at the old image
			logrus.WithFields(logrus.Fields{
				"article_id": article.ID,
				"user_id":    user.ID,
				"error":      err.Error(),
			}).Error("Failed to update article")
			flash(c, session.FlashDanger, "Error updating Post")
			render(c, http.StatusInternalServerError, "edit_article.html", view)
			return
		}
		logrus.WithFields(logrus.Fields{
			"article_id": article.ID,
			"user_id":    user.ID,
		}).Info("Article updated")
		flash(c, session.FlashSuccess, "Post updated successfully")
		redirect(c, "/")
	}
}

// EditArticleHandler renders the edit form pre-filled from the article.
// Owners and admins may open it.
func EditArticleHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		article, ok := loadArticle(c, app)
		if !ok {
			return
		}
		if !article.CanManage(middleware.CurrentUser(c)) {
			forbidden(c)
			return
		}
		form := &forms.ArticleForm{Title: article.Title, Content: article.Content}
		if article.AuthorName != nil {
			form.Author = *article.AuthorName
		}
		render(c, http.StatusOK, "edit_article.html", gin.H{"title": "Edit article", "article": article, "form": form})
	}
}

// DeleteArticleHandler removes an article for its owner or an admin
func DeleteArticleHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		article, ok := loadArticle(c, app) // Missing articles are reported before authorization
		if !ok {
			return
		}
		user := middleware.CurrentUser(c)
		if !article.CanManage(user) {
			forbidden(c)
			return
		}
		fields := logrus.Fields{"article_id": article.ID, "user_id": user.ID}
		switch err := app.Articles.Delete(c.Request.Context(), article.ID); {
		case err == nil:
			logrus.WithFields(fields).Info("Article deleted")
			flash(c, session.FlashSuccess, "Article deleted successfully")
		case errors.Is(err, repository.ErrNotFound):
			flash(c, session.FlashDanger, "Article not found")
		default:
			logrus.WithFields(fields).WithError(err).Error("Failed to delete article")
			flash(c, session.FlashDanger, "Error deleting article. Please try again.")
		}
		redirect(c, "/")
	}
}

// SearchHandler matches article titles against the query from the form or the URL
func SearchHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.PostForm("query")
		if query == "" {
			query = c.Query("query")
		}
		query = strings.TrimSpace(query)

		results := []domain.Article{} // Blank queries match nothing
		if query != "" {
			var err error
			results, err = app.Articles.SearchTitle(c.Request.Context(), query)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"query": query,
					"error": err.Error(),
				}).Error("Failed to search articles")
				serverError(c)
				return
			}
		}
		render(c, http.StatusOK, "search_results.html", gin.H{"title": "Search", "results": results, "query": query})
	}
}

// loadArticle resolves :id, rendering the not-found view when there is no such article
func loadArticle(c *gin.Context, app *App) (*domain.Article, bool) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	article, err := app.Articles.GetByID(c.Request.Context(), id)
	switch {
	case err == nil:
		return article, true
	case errors.Is(err, repository.ErrNotFound):
		notFound(c)
	default:
		logrus.WithFields(logrus.Fields{
			"article_id": id,
			"error":      err.Error(),
		}).Error("Failed to load article")
		serverError(c)
	}
	return nil, false
}

// failUpload re-renders a form after the image could not be stored
func failUpload(c *gin.Context, page string, view gin.H, err error) {
	if errors.Is(err, storage.ErrInvalidFilename) {
		errs := forms.Errors{}
		errs.Add("image", "Invalid file name.")
		view["errors"] = errs
		render(c, http.StatusUnprocessableEntity, page, view)
		return
	}
	logrus.WithError(err).Error("Failed to store image")
	flash(c, session.FlashDanger, "Could not store the image. Please try again.")
	render(c, http.StatusInternalServerError, page, view)
}

// discardUpload removes an image stored for a write that then failed. Files
// still referenced by an article, including the one being edited, are kept.
func discardUpload(c *gin.Context, app *App, stored, previous *string) {
	if stored == nil || (previous != nil && *previous == *stored) {
		return // Nothing new was written
	}
	ctx := c.Request.Context()
	inUse, err := app.Articles.ImageInUse(ctx, *stored)
	if err != nil || inUse {
		return // Unsure or shared, leave it
	}
	if err := app.Uploads.Remove(ctx, *stored); err != nil {
		logrus.WithFields(logrus.Fields{
			"image": *stored,
			"error": err.Error(),
		}).Warn("Failed to remove orphaned image")
	}
}

// optional maps a blank form value to NULL
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
