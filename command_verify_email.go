package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// DefaultTokenTTL bounds how long a pending token stays consumable.
const DefaultTokenTTL = "24h"

type VerifyEmailMessage struct {
	Token string `json:"token"`

	OnResponse func(account *Account)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

// VerifyEmailHandler consumes a pending verification token. The clear happens
// in a single conditional UPDATE, so when two requests race on the same token
// exactly one observes the pending value and wins.
type VerifyEmailHandler struct {
	repo     RepositoryManager
	tokenTTL string
}

// NewVerifyEmailHandler creates a handler with sane defaults.
func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:     repo,
		tokenTTL: DefaultTokenTTL,
	}
}

// WithTokenTTL overrides the consumption window, e.g. "48h".
func (h *VerifyEmailHandler) WithTokenTTL(pattern string) *VerifyEmailHandler {
	if pattern != "" {
		h.tokenTTL = pattern
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	account := &Account{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pending, err := h.repo.Accounts().FindByVerificationTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// covers never issued and already consumed, no distinction made
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve verification token")
		}

		if pending.VerificationSentAt != nil {
			expired, err := IsOutsideThresholdPeriod(*pending.VerificationSentAt, h.tokenTTL)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check token expiration period")
			}
			if expired {
				return ErrInvalidToken
			}
		}

		if account, err = h.repo.Accounts().ConsumeVerificationTokenTx(ctx, tx, event.Token); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify email")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}
