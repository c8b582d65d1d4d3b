package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order_system/internal/apperr"
	"order_system/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateUsername is returned when another account already uses the username.
	ErrDuplicateUsername = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "username already exists",
		Fields:  map[string]string{"username": "an account with that username already exists"},
	}
	// ErrDuplicateEmail is returned when another account already uses the email.
	ErrDuplicateEmail = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "email already exists",
		Fields:  map[string]string{"email": "an account with that email already exists"},
	}
	// ErrAccountNotFound is returned for unknown account ids.
	ErrAccountNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "account not found"}
)

// AccountInput carries the fields for a new account.
type AccountInput struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	IsAdmin   bool   `json:"is_admin"`
}

// AccountPatch carries a partial update. Nil fields are left untouched.
type AccountPatch struct {
	Username  *string `json:"username" validate:"omitnil,required,max=150,username"`
	Email     *string `json:"email" validate:"omitnil,required,max=254,email"`
	Password  *string `json:"password" validate:"omitnil,required,min=8,max=72"`
	FirstName *string `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string `json:"bio"`
	IsAdmin   *bool   `json:"is_admin"`
}

// AccountStore persists accounts. Passwords are hashed here and nowhere else.
type AccountStore struct {
	db       *gorm.DB
	hashCost int
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db, hashCost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy of the store using the given bcrypt cost.
func (s *AccountStore) WithHashCost(cost int) *AccountStore {
	cp := *s
	cp.hashCost = cost
	return &cp
}

func (s *AccountStore) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (in *AccountInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

func (p *AccountPatch) normalize() {
	for _, f := range []*string{p.Username, p.Email, p.FirstName, p.LastName} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// Create validates and stores a new account.
func (s *AccountStore) Create(ctx context.Context, in AccountInput) (*domain.Account, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		IsAdmin:   in.IsAdmin,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAccountUnique(tx, 0, &account.Username, &account.Email); err != nil {
			return err
		}
		return tx.Create(account).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			// lost a race with a concurrent insert; find out which column collided
			return nil, s.classifyDuplicate(ctx, 0, account.Username, account.Email)
		}
		return nil, wrapErr("create account", err)
	}
	return account, nil
}

// Update applies a partial update to an account.
func (s *AccountStore) Update(ctx context.Context, id uint, patch AccountPatch) (*domain.Account, error) {
	patch.normalize()
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	var hash string
	if patch.Password != nil {
		h, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var account domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, id).Error; err != nil {
			return notFoundOr(err, ErrAccountNotFound)
		}
		if err := checkAccountUnique(tx, account.ID, patch.Username, patch.Email); err != nil {
			return err
		}
		if patch.Username != nil {
			account.Username = *patch.Username
		}
		if patch.Email != nil {
			account.Email = *patch.Email
		}
		if patch.FirstName != nil {
			account.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			account.LastName = *patch.LastName
		}
		if patch.Bio != nil {
			account.Bio = *patch.Bio
		}
		if patch.IsAdmin != nil {
			account.IsAdmin = *patch.IsAdmin
		}
		if hash != "" {
			account.Password = hash
		}
		return tx.Save(&account).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			username, email := account.Username, account.Email
			return nil, s.classifyDuplicate(ctx, id, username, email)
		}
		return nil, wrapErr("update account", err)
	}
	return &account, nil
}

// Delete removes an account together with its token and every order it owns, in one transaction.
func (s *AccountStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account domain.Account
		if err := tx.Select("id").First(&account, id).Error; err != nil {
			return notFoundOr(err, ErrAccountNotFound)
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.AuthToken{}).Error; err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.Order{}).Error; err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		return tx.Delete(&domain.Account{}, id).Error
	})
	return wrapErr("delete account", err)
}

// List returns every account in id order.
func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := s.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountStore) Get(ctx context.Context, id uint) (*domain.Account, error) {
	var account domain.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, wrapErr("get account", notFoundOr(err, ErrAccountNotFound))
	}
	return &account, nil
}

func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.getBy(ctx, "username", username)
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getBy(ctx, "email", email)
}

func (s *AccountStore) getBy(ctx context.Context, column, value string) (*domain.Account, error) {
	var account domain.Account
	err := s.db.WithContext(ctx).Where(column+" = ?", value).First(&account).Error
	if err != nil {
		return nil, wrapErr("get account", notFoundOr(err, ErrAccountNotFound))
	}
	return &account, nil
}

// FindByEmails returns the accounts whose email is in emails, in id order.
func (s *AccountStore) FindByEmails(ctx context.Context, emails []string) ([]domain.Account, error) {
	var accounts []domain.Account
	if len(emails) == 0 {
		return accounts, nil
	}
	if err := s.db.WithContext(ctx).Where("email IN ?", emails).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("find accounts by email: %w", err)
	}
	return accounts, nil
}

// Emails returns one email per account.
func (s *AccountStore) Emails(ctx context.Context) ([]string, error) {
	emails := []string{}
	if err := s.db.WithContext(ctx).Model(&domain.Account{}).Order("id").Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return emails, nil
}

// checkAccountUnique looks for other accounts holding the username or email.
// selfID is excluded so an update may keep its own values.
func checkAccountUnique(tx *gorm.DB, selfID uint, username, email *string) error {
	exists := func(column, value string) (bool, error) {
		var n int64
		q := tx.Model(&domain.Account{}).Where(column+" = ?", value)
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
	if username != nil {
		taken, err := exists("username", *username)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}
	}
	if email != nil {
		taken, err := exists("email", *email)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
	}
	return nil
}

func (s *AccountStore) classifyDuplicate(ctx context.Context, selfID uint, username, email string) error {
	err := checkAccountUnique(s.db.WithContext(ctx), selfID, &username, &email)
	if err == nil {
		return apperr.Validation("account already exists", nil)
	}
	return err
}

// notFoundOr maps gorm's record-not-found to notFound and passes other errors through
func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// wrapErr leaves application errors untouched so their kind survives, and adds context to the rest
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
