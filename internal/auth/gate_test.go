package auth

import (
	"context"
	"testing"

	"order_system/internal/apperr"
	"order_system/internal/db/dbtest"
	"order_system/internal/domain"
	"order_system/internal/store"
	"order_system/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fixture struct {
	gate     *Gate
	accounts *store.AccountStore
	user     *domain.Account
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.New(t)
	accounts := store.NewAccountStore(conn).WithHashCost(bcrypt.MinCost)
	gate := NewGate(accounts, store.NewTokenStore(conn), testSecret)
	user, err := accounts.Create(context.Background(), store.AccountInput{
		Username: "user1",
		Email:    "user1@example.com",
		Password: "userpass1",
	})
	require.NoError(t, err)
	return fixture{gate: gate, accounts: accounts, user: user}
}

func TestLoginReturnsSameTokenTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.gate.Login(ctx, "user1", "userpass1")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, first.AccountID)
	assert.Equal(t, "user1@example.com", first.Email)
	assert.NotEmpty(t, first.Token)

	second, err := f.gate.Login(ctx, "user1", "userpass1")
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestLoginByEmail(t *testing.T) {
	f := newFixture(t)
	res, err := f.gate.Login(context.Background(), "user1@example.com", "userpass1")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, res.AccountID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string][2]string{
		"wrong password":   {"user1", "wrongpass"},
		"unknown user":     {"nobody", "userpass1"},
		"unknown email":    {"nobody@example.com", "userpass1"},
		"empty identifier": {"", "userpass1"},
		"empty password":   {"user1", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.gate.Login(ctx, c[0], c[1])
			assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
		})
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.gate.Login(ctx, "user1", "userpass1")
	require.NoError(t, err)

	account, err := f.gate.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, account.ID)
}

func TestResolveRejectsUnknownTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gate.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// correctly signed but never issued
	minted, err := utils.GenerateToken(f.user.ID, testSecret)
	require.NoError(t, err)
	_, err = f.gate.Resolve(ctx, minted)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// issued under another secret
	foreign, err := utils.GenerateToken(f.user.ID, "other-secret")
	require.NoError(t, err)
	_, err = f.gate.Resolve(ctx, foreign)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolveAfterAccountDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.gate.Login(ctx, "user1", "userpass1")
	require.NoError(t, err)
	require.NoError(t, f.accounts.Delete(ctx, f.user.ID))

	_, err = f.gate.Resolve(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestPasswordChangeKeepsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.gate.Login(ctx, "user1", "userpass1")
	require.NoError(t, err)

	newPass := "changedpass"
	_, err = f.accounts.Update(ctx, f.user.ID, store.AccountPatch{Password: &newPass})
	require.NoError(t, err)

	_, err = f.gate.Login(ctx, "user1", "userpass1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	again, err := f.gate.Login(ctx, "user1", newPass)
	require.NoError(t, err)
	assert.Equal(t, res.Token, again.Token)
}
