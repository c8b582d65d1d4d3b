package service

import (
	"context"

	"order_system/internal/domain"
	"order_system/internal/store"

	"github.com/sirupsen/logrus"
)

// AccountService fronts the account store for the HTTP layer and keeps the
// aggregate email cache in step with account mutations.
type AccountService struct {
	accounts    *store.AccountStore
	aggregation *AggregationService
}

func NewAccountService(accounts *store.AccountStore, aggregation *AggregationService) *AccountService {
	return &AccountService{accounts: accounts, aggregation: aggregation}
}

func (s *AccountService) Create(ctx context.Context, in store.AccountInput) (*domain.Account, error) {
	account, err := s.accounts.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.aggregation.InvalidateEmails(ctx)
	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"is_admin":   account.IsAdmin,
	}).Info("Account created")
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, id uint, patch store.AccountPatch) (*domain.Account, error) {
	account, err := s.accounts.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.aggregation.InvalidateEmails(ctx)
	logrus.WithFields(logrus.Fields{
		"account_id":       account.ID,
		"password_changed": patch.Password != nil,
	}).Info("Account updated")
	return account, nil
}

// Delete removes the account and, in the same transaction, its orders and token.
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.aggregation.InvalidateEmails(ctx)
	logrus.WithField("account_id", id).Info("Account deleted")
	return nil
}

func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

func (s *AccountService) Get(ctx context.Context, id uint) (*domain.Account, error) {
	return s.accounts.Get(ctx, id)
}
