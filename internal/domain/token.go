package domain

import "time"

// AuthToken binds one opaque bearer token to one account.
type AuthToken struct {
	Key       string    `gorm:"column:token_key;primaryKey;size:512"` // Token string handed to the client
	AccountID uint      `gorm:"uniqueIndex;not null"`                 // One token per account
	CreatedAt time.Time `gorm:"autoCreateTime"`                       // Issue time
}
