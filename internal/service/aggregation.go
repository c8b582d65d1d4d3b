package service

import (
	"context"
	"strings"
	"time"

	"order_system/internal/apperr"
	"order_system/internal/domain"
	"order_system/internal/store"
	"order_system/internal/utils"

	"github.com/sirupsen/logrus"
)

const emailsCacheKey = "admin:emails"

// OrdersByEmailsResult is the denormalized answer to an orders-by-email lookup.
type OrdersByEmailsResult struct {
	Orders      []domain.Order
	TotalOrders int
	EmailsFound []string
}

// AggregationService answers admin-only questions that span accounts.
// Callers are expected to have passed the access policy already.
type AggregationService struct {
	accounts *store.AccountStore
	orders   *store.OrderStore
	cache    utils.Cache
	ttl      time.Duration
}

func NewAggregationService(accounts *store.AccountStore, orders *store.OrderStore, cache utils.Cache, ttl time.Duration) *AggregationService {
	if cache == nil {
		cache = utils.NopCache{}
	}
	return &AggregationService{accounts: accounts, orders: orders, cache: cache, ttl: ttl}
}

// AllEmails returns one email per account. The second result reports whether it came from the cache.
func (s *AggregationService) AllEmails(ctx context.Context) ([]string, bool, error) {
	var cached []string
	found, err := s.cache.Get(ctx, emailsCacheKey, &cached)
	if err != nil {
		logrus.WithError(err).Warn("Email cache read failed")
	}
	if err == nil && found {
		return cached, true, nil
	}

	emails, err := s.accounts.Emails(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, emailsCacheKey, emails, s.ttl); err != nil {
		logrus.WithError(err).Warn("Email cache write failed")
	}
	return emails, false, nil
}

// InvalidateEmails drops the cached email list; call it after any account mutation.
func (s *AggregationService) InvalidateEmails(ctx context.Context) {
	if err := s.cache.Delete(ctx, emailsCacheKey); err != nil {
		logrus.WithError(err).Warn("Email cache invalidation failed")
	}
}

// OrdersByEmails collects the orders of every account whose email is listed.
// Unknown emails are dropped without error; an empty list is a validation error.
func (s *AggregationService) OrdersByEmails(ctx context.Context, emails []string) (*OrdersByEmailsResult, error) {
	wanted := dedupeEmails(emails)
	if len(wanted) == 0 {
		return nil, apperr.Validation("no email addresses provided", map[string]string{"emails": "at least one email address is required"})
	}

	accounts, err := s.accounts.FindByEmails(ctx, wanted)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(accounts))
	found := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
		found = append(found, a.Email)
	}

	orders, err := s.orders.ListForOwners(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &OrdersByEmailsResult{Orders: orders, TotalOrders: len(orders), EmailsFound: found}, nil
}

func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
