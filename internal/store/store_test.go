package store

import (
	"context"
	"sync"
	"testing"

	"order_system/internal/apperr"
	"order_system/internal/db/dbtest"
	"order_system/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type StoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	accounts *AccountStore
	orders   *OrderStore
	tokens   *TokenStore
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

// SetupTest gives every test a fresh database
func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.New(s.T())
	s.accounts = NewAccountStore(s.db).WithHashCost(bcrypt.MinCost)
	s.orders = NewOrderStore(s.db)
	s.tokens = NewTokenStore(s.db)
}

func (s *StoreTestSuite) createAccount(username string) *domain.Account {
	acc, err := s.accounts.Create(s.ctx, AccountInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "userpass1",
	})
	s.Require().NoError(err)
	return acc
}

func (s *StoreTestSuite) createOrder(owner *domain.Account, number string, amount int64) *domain.Order {
	total := decimal.NewFromInt(amount)
	order, err := s.orders.Create(s.ctx, owner.ID, OrderInput{OrderNumber: number, TotalAmount: &total})
	s.Require().NoError(err)
	return order
}

func ptr[T any](v T) *T { return &v }

func (s *StoreTestSuite) TestCreateAccountHashesPassword() {
	acc := s.createAccount("user1")
	s.NotEqual("userpass1", acc.Password)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte("userpass1")))

	var stored domain.Account
	s.Require().NoError(s.db.First(&stored, acc.ID).Error)
	s.NotContains(stored.Password, "userpass1")
}

func (s *StoreTestSuite) TestCreateAccountDuplicates() {
	s.createAccount("user1")

	_, err := s.accounts.Create(s.ctx, AccountInput{Username: "user1", Email: "other@example.com", Password: "userpass1"})
	s.ErrorIs(err, ErrDuplicateUsername)
	s.ErrorIs(err, apperr.ErrValidation)

	_, err = s.accounts.Create(s.ctx, AccountInput{Username: "user2", Email: "user1@example.com", Password: "userpass1"})
	s.ErrorIs(err, ErrDuplicateEmail)
	s.ErrorIs(err, apperr.ErrValidation)
}

func (s *StoreTestSuite) TestCreateAccountValidation() {
	_, err := s.accounts.Create(s.ctx, AccountInput{Username: "bad name", Email: "nope", Password: "short"})
	s.Require().ErrorIs(err, apperr.ErrValidation)
	fields := apperr.FieldsOf(err)
	s.Contains(fields, "username")
	s.Contains(fields, "email")
	s.Contains(fields, "password")
}

func (s *StoreTestSuite) TestUpdateAccount() {
	acc := s.createAccount("user1")
	oldHash := acc.Password

	updated, err := s.accounts.Update(s.ctx, acc.ID, AccountPatch{
		Email:    ptr("updated@example.com"),
		Bio:      ptr("hello"),
		Password: ptr("newpassword"),
	})
	s.Require().NoError(err)
	s.Equal("updated@example.com", updated.Email)
	s.Equal("hello", updated.Bio)
	s.Equal("user1", updated.Username)
	s.NotEqual(oldHash, updated.Password)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword")))

	// keeping its own email is not a duplicate
	_, err = s.accounts.Update(s.ctx, acc.ID, AccountPatch{Email: ptr("updated@example.com")})
	s.NoError(err)
}

func (s *StoreTestSuite) TestUpdateAccountErrors() {
	acc := s.createAccount("user1")
	s.createAccount("user2")

	_, err := s.accounts.Update(s.ctx, 9999, AccountPatch{Bio: ptr("x")})
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.accounts.Update(s.ctx, acc.ID, AccountPatch{Username: ptr("user2")})
	s.ErrorIs(err, ErrDuplicateUsername)

	_, err = s.accounts.Update(s.ctx, acc.ID, AccountPatch{Email: ptr("")})
	s.ErrorIs(err, apperr.ErrValidation)
	s.Contains(apperr.FieldsOf(err), "email")

	// nothing was applied by the failed updates
	got, err := s.accounts.Get(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.Equal("user1", got.Username)
	s.Equal("user1@example.com", got.Email)
}

func (s *StoreTestSuite) TestDeleteAccountCascades() {
	user1 := s.createAccount("user1")
	user2 := s.createAccount("user2")
	o1 := s.createOrder(user1, "ORD001", 100)
	o2 := s.createOrder(user1, "ORD002", 200)
	o3 := s.createOrder(user2, "ORD003", 300)
	_, _, err := s.tokens.GetOrCreate(s.ctx, user1.ID, func() (string, error) { return "tok-1", nil })
	s.Require().NoError(err)

	s.Require().NoError(s.accounts.Delete(s.ctx, user1.ID))

	for _, id := range []uint{o1.ID, o2.ID} {
		_, err := s.orders.Get(s.ctx, user1.ID, id)
		s.ErrorIs(err, apperr.ErrNotFound)
		_, err = s.orders.Get(s.ctx, user2.ID, id)
		s.ErrorIs(err, apperr.ErrNotFound)
	}
	_, err = s.orders.Get(s.ctx, user2.ID, o3.ID)
	s.NoError(err)

	_, err = s.tokens.Lookup(s.ctx, "tok-1")
	s.ErrorIs(err, apperr.ErrNotFound)

	var n int64
	s.Require().NoError(s.db.Model(&domain.Order{}).Where("account_id = ?", user1.ID).Count(&n).Error)
	s.Zero(n)

	s.ErrorIs(s.accounts.Delete(s.ctx, user1.ID), apperr.ErrNotFound)
}

func (s *StoreTestSuite) TestListAndEmails() {
	s.createAccount("user1")
	s.createAccount("user2")

	accounts, err := s.accounts.List(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)

	emails, err := s.accounts.Emails(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"user1@example.com", "user2@example.com"}, emails)

	found, err := s.accounts.FindByEmails(s.ctx, []string{"user2@example.com", "absent@example.com"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("user2", found[0].Username)
}

func (s *StoreTestSuite) TestOrderOwnershipFiltering() {
	user1 := s.createAccount("user1")
	user2 := s.createAccount("user2")
	o1 := s.createOrder(user1, "ORD001", 100)
	o2 := s.createOrder(user2, "ORD002", 200)

	list, err := s.orders.ListForOwner(s.ctx, user1.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("ORD001", list[0].OrderNumber)

	_, err = s.orders.Get(s.ctx, user1.ID, o2.ID)
	s.ErrorIs(err, ErrOrderNotFound)
	s.NotErrorIs(err, apperr.ErrForbidden)
	s.NotContains(err.Error(), "owner")

	amount := decimal.NewFromInt(250)
	_, err = s.orders.Update(s.ctx, user1.ID, o2.ID, OrderPatch{TotalAmount: &amount})
	s.ErrorIs(err, ErrOrderNotFound)

	s.ErrorIs(s.orders.Delete(s.ctx, user1.ID, o2.ID), ErrOrderNotFound)
	_, err = s.orders.Get(s.ctx, user2.ID, o2.ID)
	s.NoError(err, "foreign delete must not remove the order")

	s.NoError(s.orders.Delete(s.ctx, user1.ID, o1.ID))
	_, err = s.orders.Get(s.ctx, user1.ID, o1.ID)
	s.ErrorIs(err, ErrOrderNotFound)
}

func (s *StoreTestSuite) TestOrderUpdate() {
	user1 := s.createAccount("user1")
	o1 := s.createOrder(user1, "ORD001", 100)
	s.createOrder(user1, "ORD002", 200)

	amount := decimal.RequireFromString("150.50")
	updated, err := s.orders.Update(s.ctx, user1.ID, o1.ID, OrderPatch{TotalAmount: &amount})
	s.Require().NoError(err)
	s.True(updated.TotalAmount.Equal(amount))
	s.Equal("ORD001", updated.OrderNumber)
	s.Equal(o1.CreatedAt.Unix(), updated.CreatedAt.Unix())

	got, err := s.orders.Get(s.ctx, user1.ID, o1.ID)
	s.Require().NoError(err)
	s.True(got.TotalAmount.Equal(amount))

	_, err = s.orders.Update(s.ctx, user1.ID, o1.ID, OrderPatch{OrderNumber: ptr("ORD002")})
	s.ErrorIs(err, ErrDuplicateOrderNumber)
}

func (s *StoreTestSuite) TestOrderValidation() {
	user1 := s.createAccount("user1")

	_, err := s.orders.Create(s.ctx, user1.ID, OrderInput{OrderNumber: "ORD001"})
	s.ErrorIs(err, apperr.ErrValidation)
	s.Contains(apperr.FieldsOf(err), "total_amount")

	tooPrecise := decimal.RequireFromString("1.234")
	_, err = s.orders.Create(s.ctx, user1.ID, OrderInput{OrderNumber: "ORD001", TotalAmount: &tooPrecise})
	s.ErrorIs(err, apperr.ErrValidation)

	tooLarge := decimal.RequireFromString("123456789")
	_, err = s.orders.Create(s.ctx, user1.ID, OrderInput{OrderNumber: "ORD001", TotalAmount: &tooLarge})
	s.ErrorIs(err, apperr.ErrValidation)

	ok := decimal.RequireFromString("12345678.90")
	_, err = s.orders.Create(s.ctx, user1.ID, OrderInput{OrderNumber: "ORD-LONG-NUMBER-000001", TotalAmount: &ok})
	s.ErrorIs(err, apperr.ErrValidation)
	s.Contains(apperr.FieldsOf(err), "order_number")

	s.createOrder(user1, "ORD001", 1)
	_, err = s.orders.Create(s.ctx, user1.ID, OrderInput{OrderNumber: "ORD001", TotalAmount: &ok})
	s.ErrorIs(err, ErrDuplicateOrderNumber)
}

func (s *StoreTestSuite) TestListForOwners() {
	user1 := s.createAccount("user1")
	user2 := s.createAccount("user2")
	user3 := s.createAccount("user3")
	s.createOrder(user1, "ORD001", 100)
	s.createOrder(user2, "ORD002", 200)
	s.createOrder(user3, "ORD003", 300)

	orders, err := s.orders.ListForOwners(s.ctx, []uint{user1.ID, user2.ID})
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Require().NotNil(orders[0].Account)
	s.Equal("user1@example.com", orders[0].Account.Email)

	empty, err := s.orders.ListForOwners(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *StoreTestSuite) TestTokenGetOrCreateIsIdempotent() {
	user1 := s.createAccount("user1")
	mint := func() (string, error) { return uuid.NewString(), nil }

	first, created, err := s.tokens.GetOrCreate(s.ctx, user1.ID, mint)
	s.Require().NoError(err)
	s.True(created)

	second, created, err := s.tokens.GetOrCreate(s.ctx, user1.ID, mint)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first, second)

	tok, err := s.tokens.Lookup(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(user1.ID, tok.AccountID)
}

func (s *StoreTestSuite) TestTokenGetOrCreateConcurrent() {
	user1 := s.createAccount("user1")
	mint := func() (string, error) { return uuid.NewString(), nil }

	const workers = 8
	keys := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, _, err := s.tokens.GetOrCreate(s.ctx, user1.ID, mint)
			require.NoError(s.T(), err)
			keys[i] = key
		}(i)
	}
	wg.Wait()

	for _, k := range keys[1:] {
		s.Equal(keys[0], k)
	}
	var n int64
	s.Require().NoError(s.db.Model(&domain.AuthToken{}).Count(&n).Error)
	s.EqualValues(1, n)
}
