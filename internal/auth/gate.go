package auth

import (
	"context"
	"errors"
	"strings"

	"order_system/internal/apperr"
	"order_system/internal/domain"
	"order_system/internal/metrics"
	"order_system/internal/store"
	"order_system/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the identifier matches no account,
// so a failed lookup costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string
	AccountID uint
	Email     string
}

// Gate checks credentials, issues tokens and resolves them back to accounts.
type Gate struct {
	accounts *store.AccountStore
	tokens   *store.TokenStore
	secret   string
}

func NewGate(accounts *store.AccountStore, tokens *store.TokenStore, secret string) *Gate {
	return &Gate{accounts: accounts, tokens: tokens, secret: secret}
}

// Login authenticates by username or email and returns the account's token,
// creating it on first login. An existing token is returned unchanged.
func (g *Gate) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.InvalidCredentials()
	}

	account, err := g.findAccount(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, apperr.InvalidCredentials()
	}

	key, created, err := g.tokens.GetOrCreate(ctx, account.ID, func() (string, error) {
		return utils.GenerateToken(account.ID, g.secret)
	})
	if err != nil {
		return nil, err
	}
	if created {
		metrics.TokensIssued.Inc()
		logrus.WithField("account_id", account.ID).Info("Auth token issued")
	}
	return &LoginResult{Token: key, AccountID: account.ID, Email: account.Email}, nil
}

func (g *Gate) findAccount(ctx context.Context, identifier string) (*domain.Account, error) {
	account, err := g.accounts.GetByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, apperr.ErrNotFound) || !strings.Contains(identifier, "@") {
		return account, err
	}
	return g.accounts.GetByEmail(ctx, identifier)
}

// Resolve returns the account a token is bound to.
// The signature is checked first so garbage never reaches the database.
func (g *Gate) Resolve(ctx context.Context, key string) (*domain.Account, error) {
	accountID, err := utils.ParseToken(key, g.secret)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token")
	}
	token, err := g.tokens.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid token")
		}
		return nil, err
	}
	if token.AccountID != accountID {
		return nil, apperr.Unauthenticated("invalid token")
	}
	account, err := g.accounts.Get(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid token")
		}
		return nil, err
	}
	return account, nil
}
