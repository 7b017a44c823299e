package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/campuskit/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newResetHandler(repo *MockRepositoryManager) *accounts.ResetPasswordHandler {
	return accounts.NewResetPasswordHandler(repo).WithCodec(stubCodec{})
}

func TestResetPasswordHandlerUnknownToken(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByResetTokenTx", mock.Anything, mock.Anything, "nope").
		Return(nil, repository.NewRecordNotFound()).Once()

	err := newResetHandler(repo).Execute(context.Background(), accounts.ResetPasswordMessage{
		Token:  "nope",
		Secret: "newpw123",
	})

	require.ErrorIs(t, err, accounts.ErrInvalidToken)
	store.AssertNotCalled(t, "ConsumeResetTokenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordHandlerExpiredToken(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	requestedAt := time.Now().Add(-48 * time.Hour)
	store.On("FindByResetTokenTx", mock.Anything, mock.Anything, "rst-1").
		Return(&accounts.Account{ResetToken: "rst-1", ResetRequestedAt: &requestedAt}, nil).Once()

	err := newResetHandler(repo).Execute(context.Background(), accounts.ResetPasswordMessage{
		Token:  "rst-1",
		Secret: "newpw123",
	})

	require.ErrorIs(t, err, accounts.ErrInvalidToken)
	store.AssertNotCalled(t, "ConsumeResetTokenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordHandlerStoresEncodedSecret(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	now := time.Now()
	pending := &accounts.Account{ResetToken: "rst-1", ResetRequestedAt: &now}
	store.On("FindByResetTokenTx", mock.Anything, mock.Anything, "rst-1").
		Return(pending, nil).Once()

	updated := &accounts.Account{SecretHash: "enc:newpw123"}
	store.On("ConsumeResetTokenTx", mock.Anything, mock.Anything, "rst-1", "enc:newpw123").
		Return(updated, nil).Once()

	var got *accounts.Account
	err := newResetHandler(repo).Execute(context.Background(), accounts.ResetPasswordMessage{
		Token:  "rst-1",
		Secret: "newpw123",
		OnResponse: func(a *accounts.Account) {
			got = a
		},
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	store.AssertExpectations(t)
}

func TestResetPasswordHandlerLosesConsumeRace(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	now := time.Now()
	store.On("FindByResetTokenTx", mock.Anything, mock.Anything, "rst-1").
		Return(&accounts.Account{ResetToken: "rst-1", ResetRequestedAt: &now}, nil).Once()
	store.On("ConsumeResetTokenTx", mock.Anything, mock.Anything, "rst-1", "enc:newpw123").
		Return(nil, repository.NewRecordNotFound()).Once()

	err := newResetHandler(repo).Execute(context.Background(), accounts.ResetPasswordMessage{
		Token:  "rst-1",
		Secret: "newpw123",
	})

	require.ErrorIs(t, err, accounts.ErrInvalidToken)
}
