package repository

import (
	"context"      // Request-scoped queries
	"strings"      // LIKE pattern building
	"time"         // Creation timestamps
	"unicode/utf8" // ASCII detection

	"blog_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// likeEscaper escapes LIKE wildcards; '!' works as ESCAPE on both MySQL and SQLite
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ArticleRepository reads and writes articles
type ArticleRepository struct {
	db *gorm.DB // Shared connection pool
}

// NewArticleRepository creates an ArticleRepository backed by db
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) newest(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Order("timestamp desc").Order("id desc")
}

// Create inserts an article, stamping it with the current UTC time when unset
func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC() // Stored in UTC
	}
	return classify("create article", r.db.WithContext(ctx).Omit("Author").Create(a).Error)
}

// GetByID loads an article and its owner
func (r *ArticleRepository) GetByID(ctx context.Context, id uint) (*domain.Article, error) {
	var a domain.Article // Destination row
	if err := r.db.WithContext(ctx).Preload("Author").First(&a, id).Error; err != nil {
		return nil, classify("get article", err)
	}
	return &a, nil
}

// Update overwrites the editable columns. Owner and timestamp never change.
func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	err := r.db.WithContext(ctx).Model(&domain.Article{}).Where("id = ?", a.ID).Updates(map[string]any{
		"title":       a.Title,
		"content":     a.Content,
		"img":         a.Img,
		"author_name": a.AuthorName,
	}).Error
	return classify("update article", err)
}

// Delete removes the article permanently
func (r *ArticleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Article{}, id)
	if res.Error != nil {
		return classify("delete article", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ImageInUse reports whether any article references the stored image name
func (r *ArticleRepository) ImageInUse(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Article{}).Where("img = ?", name).Count(&n).Error; err != nil {
		return false, classify("count image references", err)
	}
	return n > 0, nil
}

// ListNewest returns every article, newest first
func (r *ArticleRepository) ListNewest(ctx context.Context) ([]domain.Article, error) {
	articles := []domain.Article{}
	if err := r.newest(ctx).Find(&articles).Error; err != nil {
		return nil, classify("list articles", err)
	}
	return articles, nil
}

// SearchTitle returns articles whose title contains q, ignoring case.
// An empty q matches nothing.
func (r *ArticleRepository) SearchTitle(ctx context.Context, q string) ([]domain.Article, error) {
	articles := []domain.Article{} // Never nil, views range over it
	if q == "" {
		return articles, nil // Blank queries match nothing
	}
	folded := strings.ToLower(q)
	// SQLite's LOWER() folds ASCII only, so non-ASCII queries are matched here
	if r.db.Dialector.Name() == "sqlite" && !isASCII(folded) {
		return r.searchFolded(ctx, folded)
	}
	pattern := "%" + likeEscaper.Replace(folded) + "%" // Substring match, wildcards in q are literal
	if err := r.newest(ctx).Where("LOWER(title) LIKE ? ESCAPE '!'", pattern).Find(&articles).Error; err != nil {
		return nil, classify("search articles", err)
	}
	return articles, nil
}

func (r *ArticleRepository) searchFolded(ctx context.Context, folded string) ([]domain.Article, error) {
	all, err := r.ListNewest(ctx)
	if err != nil {
		return nil, err
	}
	articles := all[:0]
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Title), folded) {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
