package accounts_test

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campuskit/go-accounts"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

var errTokensExhausted = errors.New("stub token generator exhausted")

// MockAccounts implements accounts.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, email)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByStudentID(ctx context.Context, studentID string) (*accounts.Account, error) {
	args := m.Called(ctx, studentID)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByStudentIDTx(ctx context.Context, tx bun.IDB, studentID string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, studentID)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByFederatedSubject(ctx context.Context, subject string) (*accounts.Account, error) {
	args := m.Called(ctx, subject)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByFederatedSubjectTx(ctx context.Context, tx bun.IDB, subject string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, subject)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByVerificationToken(ctx context.Context, token string) (*accounts.Account, error) {
	args := m.Called(ctx, token)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, token)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByResetToken(ctx context.Context, token string) (*accounts.Account, error) {
	args := m.Called(ctx, token)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, token)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, record)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) Update(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, record)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) UpdateTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, token)
	return toAccount(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, secretHash string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, token, secretHash)
	return toAccount(args.Get(0)), args.Error(1)
}

func toAccount(v any) *accounts.Account {
	if v == nil {
		return nil
	}
	return v.(*accounts.Account)
}

// MockRepositoryManager implements accounts.RepositoryManager. RunInTx invokes
// the callback with a zero transaction so handler logic runs against the
// mocked repositories.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Accounts() accounts.Accounts {
	args := m.Called()
	return args.Get(0).(accounts.Accounts)
}

// MockNotifier implements accounts.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipient string, purpose accounts.Purpose, link string) error {
	args := m.Called(ctx, recipient, purpose, link)
	return args.Error(0)
}

// stubTokens yields a fixed sequence of tokens.
type stubTokens struct {
	tokens []string
	calls  int
}

func (s *stubTokens) Generate() (string, error) {
	if s.calls >= len(s.tokens) {
		return "", errTokensExhausted
	}
	t := s.tokens[s.calls]
	s.calls++
	return t, nil
}

// stubCodec is a deterministic codec so tests can assert on stored forms.
type stubCodec struct{}

func (stubCodec) Encode(secret string) (string, error) {
	if secret == "" {
		return "", accounts.ErrNoEmptyString
	}
	return "enc:" + secret, nil
}

func (stubCodec) Compare(secret, stored string) error {
	if "enc:"+secret != stored {
		return accounts.ErrSecretMismatch
	}
	return nil
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
