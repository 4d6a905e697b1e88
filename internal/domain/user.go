package domain

// Roles a user can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID       uint      `gorm:"primaryKey"`                   // Primary key
	Username string    `gorm:"size:64;uniqueIndex;not null"` // Unique username
	Password string    `gorm:"not null"`                     // Hashed password
	Role     string    `gorm:"size:32;default:user"`         // Role: user or admin
	Articles []Article `gorm:"constraint:OnUpdate:CASCADE;"` // One-to-many relationship with Article
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
