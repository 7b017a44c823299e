// Package federated resolves already validated identity claims from an
// external provider to local accounts. It never parses or verifies provider
// tokens; upstream hands it the extracted claim.
package federated

import (
	"context"
	"time"

	"github.com/campuskit/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Reconciler maps a federated claim to an existing or new account.
//
// Resolution order, first match wins:
//  1. by federated subject: the account is already linked, returned as is
//  2. by email: the subject is attached to the existing account, the account
//     is forced verified, and a supplied student id is adopted only when the
//     account has none
//  3. otherwise a new verified account is created with no local secret
type Reconciler struct {
	repo accounts.RepositoryManager

	// OnAccountCreated runs after a federated first contact creates an account.
	OnAccountCreated func(ctx context.Context, account *accounts.Account, claim accounts.FederatedClaim) error
	// OnSubjectLinked runs after a subject is attached to an existing account.
	OnSubjectLinked func(ctx context.Context, account *accounts.Account, claim accounts.FederatedClaim) error
}

var _ accounts.FederatedReconciler = (*Reconciler)(nil)

// NewReconciler builds a reconciler over the given repositories.
func NewReconciler(repo accounts.RepositoryManager) *Reconciler {
	return &Reconciler{repo: repo}
}

// Reconcile implements accounts.FederatedReconciler. The whole resolution runs
// in one store transaction; when a concurrent first contact wins the create
// race, the uniqueness conflict triggers a single re-resolution pass instead
// of surfacing a duplicate error.
func (r *Reconciler) Reconcile(ctx context.Context, claim accounts.FederatedClaim) (*accounts.Account, bool, error) {
	if claim.Subject == "" {
		return nil, false, ErrMissingSubject
	}
	if claim.Email == "" {
		return nil, false, ErrMissingEmail
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var account *accounts.Account
	var isNew bool

	run := func() error {
		return r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var err error
			account, isNew, err = r.resolve(ctx, tx, claim)
			return err
		})
	}

	err := run()
	if isConflict(err) {
		err = run()
	}

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, false, richErr
		}
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reconcile federated identity")
	}

	return account, isNew, nil
}

func (r *Reconciler) resolve(ctx context.Context, tx bun.Tx, claim accounts.FederatedClaim) (*accounts.Account, bool, error) {
	repo := r.repo.Accounts()

	linked, err := repo.FindByFederatedSubjectTx(ctx, tx, claim.Subject)
	if err == nil {
		return linked, false, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up federated subject")
	}

	existing, err := repo.FindByEmailTx(ctx, tx, claim.Email)
	if err == nil {
		existing.FederatedSubject = claim.Subject
		// the provider already confirmed control of the email
		existing.EmailVerified = true
		if existing.StudentID == "" && claim.StudentID != "" {
			existing.StudentID = claim.StudentID
		}

		if existing, err = repo.UpdateTx(ctx, tx, existing); err != nil {
			return nil, false, err
		}

		if r.OnSubjectLinked != nil {
			if err := r.OnSubjectLinked(ctx, existing, claim); err != nil {
				return nil, false, err
			}
		}

		return existing, false, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	created, err := repo.CreateTx(ctx, tx, &accounts.Account{
		FirstName:        claim.GivenName,
		LastName:         claim.FamilyName,
		Email:            claim.Email,
		StudentID:        claim.StudentID,
		FederatedSubject: claim.Subject,
		EmailVerified:    true,
	})
	if err != nil {
		return nil, false, err
	}

	if r.OnAccountCreated != nil {
		if err := r.OnAccountCreated(ctx, created, claim); err != nil {
			return nil, false, err
		}
	}

	return created, true, nil
}

func isConflict(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
		return true
	}

	return accounts.IsUniqueViolation(err)
}
