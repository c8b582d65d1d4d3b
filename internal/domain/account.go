package domain

import "time"

// Account Model
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                          // Primary key
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"` // Unique login name
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`    // Unique email address
	Password  string    `gorm:"not null" json:"-"`                             // bcrypt hash, never serialized
	FirstName string    `gorm:"size:150" json:"first_name"`                    // Optional first name
	LastName  string    `gorm:"size:150" json:"last_name"`                     // Optional last name
	Bio       string    `gorm:"type:text" json:"bio"`                          // Free text
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`        // Admin flag checked by the access policy
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
