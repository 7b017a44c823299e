package accounts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeVerificationTokenSQL flips the verified flag and clears the pending
// token in one conditional statement. Zero rows back means the token was never
// issued or was already consumed by a concurrent request.
var ConsumeVerificationTokenSQL = `UPDATE "accounts" AS "act"
SET
	"is_email_verified" = TRUE,
	"verification_token" = NULL,
	"verification_sent_at" = NULL
WHERE
	"act"."deleted_at" IS NULL
AND (
	"act"."verification_token" = ?
) RETURNING *;`

// ConsumeResetTokenSQL swaps in the new encoded secret and clears the pending
// reset token in one conditional statement.
var ConsumeResetTokenSQL = `UPDATE "accounts" AS "act"
SET
	"secret_hash" = ?,
	"reset_token" = NULL,
	"reset_requested_at" = NULL
WHERE
	"act"."deleted_at" IS NULL
AND (
	"act"."reset_token" = ?
) RETURNING *;`

// Accounts is the record store contract consumed by the lifecycle handlers and
// the federated reconciler. All finders return zero or one account.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByStudentID(ctx context.Context, studentID string) (*Account, error)
	FindByStudentIDTx(ctx context.Context, tx bun.IDB, studentID string) (*Account, error)
	FindByFederatedSubject(ctx context.Context, subject string) (*Account, error)
	FindByFederatedSubjectTx(ctx context.Context, tx bun.IDB, subject string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)
	FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)

	Create(ctx context.Context, record *Account) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Update(ctx context.Context, record *Account) (*Account, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, secretHash string) (*Account, error)
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var _ Accounts = (*accountsRepo)(nil)

// NewAccountsRepository builds the bun backed implementation of Accounts.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accountsRepo) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.findByColumn(ctx, tx, "email", email)
}

func (a *accountsRepo) FindByStudentID(ctx context.Context, studentID string) (*Account, error) {
	return a.FindByStudentIDTx(ctx, a.db, studentID)
}

func (a *accountsRepo) FindByStudentIDTx(ctx context.Context, tx bun.IDB, studentID string) (*Account, error) {
	return a.findByColumn(ctx, tx, "student_id", studentID)
}

func (a *accountsRepo) FindByFederatedSubject(ctx context.Context, subject string) (*Account, error) {
	return a.FindByFederatedSubjectTx(ctx, a.db, subject)
}

func (a *accountsRepo) FindByFederatedSubjectTx(ctx context.Context, tx bun.IDB, subject string) (*Account, error) {
	return a.findByColumn(ctx, tx, "federated_subject", subject)
}

func (a *accountsRepo) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByVerificationTokenTx(ctx, a.db, token)
}

func (a *accountsRepo) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	return a.findByColumn(ctx, tx, "verification_token", token)
}

func (a *accountsRepo) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByResetTokenTx(ctx, a.db, token)
}

func (a *accountsRepo) FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	return a.findByColumn(ctx, tx, "reset_token", token)
}

func (a *accountsRepo) findByColumn(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"column": column})
	}

	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"column": column})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) Create(ctx context.Context, record *Account) (*Account, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *accountsRepo) CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, ConflictError(err)
	}

	return created, nil
}

func (a *accountsRepo) Update(ctx context.Context, record *Account) (*Account, error) {
	return a.UpdateTx(ctx, a.db, record)
}

func (a *accountsRepo) UpdateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	updated, err := a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, ConflictError(err)
	}

	return updated, nil
}

func (a *accountsRepo) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	return a.consume(ctx, tx, ConsumeVerificationTokenSQL, token)
}

func (a *accountsRepo) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, secretHash string) (*Account, error) {
	return a.consume(ctx, tx, ConsumeResetTokenSQL, secretHash, token)
}

func (a *accountsRepo) consume(ctx context.Context, tx bun.IDB, sql string, args ...any) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, sql, args...)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return res[0], nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
