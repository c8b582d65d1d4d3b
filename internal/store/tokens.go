package store

import (
	"context"
	"errors"
	"fmt"

	"order_system/internal/apperr"
	"order_system/internal/domain"

	"gorm.io/gorm"
)

// ErrTokenNotFound is returned when no account holds the token.
var ErrTokenNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "token not found"}

const maxTokenAttempts = 3

// TokenStore maps accounts to their single auth token.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// GetOrCreate returns the account's token, minting and storing one if it has none.
// Concurrent first calls race on the unique account_id index; the loser re-reads the winner's row.
func (s *TokenStore) GetOrCreate(ctx context.Context, accountID uint, mint func() (string, error)) (key string, created bool, err error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		key, created, err = s.getOrInsert(ctx, accountID, mint)
		if err == nil || !errors.Is(err, apperr.ErrConflict) {
			return key, created, err
		}
	}
	return "", false, fmt.Errorf("issue token for account %d: %w", accountID, err)
}

func (s *TokenStore) getOrInsert(ctx context.Context, accountID uint, mint func() (string, error)) (string, bool, error) {
	var token domain.AuthToken
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("account_id = ?", accountID).First(&token).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		key, err := mint()
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		token = domain.AuthToken{Key: key, AccountID: accountID}
		if err := tx.Create(&token).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("token already issued concurrently")
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return "", false, wrapErr("get or create token", err)
	}
	return token.Key, created, nil
}

// Lookup finds the token row for a key.
func (s *TokenStore) Lookup(ctx context.Context, key string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	if err := s.db.WithContext(ctx).Where("token_key = ?", key).First(&token).Error; err != nil {
		return nil, wrapErr("lookup token", notFoundOr(err, ErrTokenNotFound))
	}
	return &token, nil
}
