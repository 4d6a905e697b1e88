package domain

import "time"

// Article Model
type Article struct {
	ID         uint      `gorm:"primaryKey"`         // Primary key
	Title      string    `gorm:"not null"`           // Article title
	Content    string    `gorm:"type:text;not null"` // Article body
	Img        *string   `gorm:"size:255"`           // Stored image name, nil when absent
	AuthorName *string   `gorm:"size:120"`           // Display author typed on the publish form
	Timestamp  time.Time `gorm:"not null;index"`     // Creation time in UTC
	UserID     uint      `gorm:"not null;index"`     // Foreign key to the owning User
	Author     User      `gorm:"foreignKey:UserID"`  // Owning user
}

// DisplayAuthor returns the typed author name, falling back to the owner's username
func (a Article) DisplayAuthor() string {
	if a.AuthorName != nil && *a.AuthorName != "" {
		return *a.AuthorName
	}
	return a.Author.Username
}

// ImageName returns the stored image name or an empty string
func (a Article) ImageName() string {
	if a.Img == nil {
		return ""
	}
	return *a.Img
}

// IsOwnedBy reports whether u is the exact owner of the article.
// Updates are restricted to this predicate; admins are not exempt.
func (a Article) IsOwnedBy(u *User) bool {
	return u != nil && u.ID == a.UserID
}

// CanManage reports whether u is the owner or an admin
func (a Article) CanManage(u *User) bool {
	return a.IsOwnedBy(u) || u.IsAdmin()
}
