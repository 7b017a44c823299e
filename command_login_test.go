package accounts_test

import (
	"context"
	"testing"

	"github.com/campuskit/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLoginHandler(repo *MockRepositoryManager) *accounts.LoginHandler {
	return accounts.NewLoginHandler(repo).WithCodec(stubCodec{})
}

func TestLoginHandlerUnknownStudentID(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByStudentID", mock.Anything, "S404").
		Return(nil, repository.NewRecordNotFound()).Once()

	err := newLoginHandler(repo).Execute(context.Background(), accounts.LoginMessage{
		StudentID: "S404",
		Secret:    "pw1",
	})

	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestLoginHandlerWrongSecret(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByStudentID", mock.Anything, "S100").
		Return(&accounts.Account{StudentID: "S100", SecretHash: "enc:pw1", EmailVerified: true}, nil).Once()

	err := newLoginHandler(repo).Execute(context.Background(), accounts.LoginMessage{
		StudentID: "S100",
		Secret:    "wrong",
	})

	// same error as an unknown student id, callers cannot tell them apart
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestLoginHandlerFederatedOnlyAccountHasNoLocalCredential(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByStudentID", mock.Anything, "S100").
		Return(&accounts.Account{StudentID: "S100", FederatedSubject: "sub-1", EmailVerified: true}, nil).Once()

	err := newLoginHandler(repo).Execute(context.Background(), accounts.LoginMessage{
		StudentID: "S100",
		Secret:    "anything",
	})

	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestLoginHandlerUnverifiedEmailCarriesAddress(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByStudentID", mock.Anything, "S100").
		Return(&accounts.Account{StudentID: "S100", Email: "ada@x.edu", SecretHash: "enc:pw1"}, nil).Once()

	err := newLoginHandler(repo).Execute(context.Background(), accounts.LoginMessage{
		StudentID: "S100",
		Secret:    "pw1",
	})

	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, accounts.TextCodeEmailNotVerified, richErr.TextCode)
	assert.Equal(t, "ada@x.edu", richErr.Metadata["email"])
}

func TestLoginHandlerSuccessReturnsProfileSubset(t *testing.T) {
	repo := &MockRepositoryManager{}
	store := &MockAccounts{}
	repo.On("Accounts").Return(store)

	store.On("FindByStudentID", mock.Anything, "S100").
		Return(&accounts.Account{
			FirstName:     "Ada",
			LastName:      "Lovelace",
			StudentID:     "S100",
			Email:         "ada@x.edu",
			SecretHash:    "enc:pw1",
			EmailVerified: true,
		}, nil).Once()

	var profile accounts.Profile
	err := newLoginHandler(repo).Execute(context.Background(), accounts.LoginMessage{
		StudentID: "S100",
		Secret:    "pw1",
		OnResponse: func(p accounts.Profile) {
			profile = p
		},
	})

	require.NoError(t, err)
	assert.Equal(t, accounts.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		StudentID: "S100",
	}, profile)
}
