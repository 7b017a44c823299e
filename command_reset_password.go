package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ResetPasswordMessage struct {
	Token  string `json:"token"`
	Secret string `json:"new_password"`

	OnResponse func(account *Account)
}

func (e ResetPasswordMessage) Type() string { return "account.reset_password" }

// ResetPasswordHandler consumes a pending reset token and stores the new
// encoded secret. The swap is a single conditional UPDATE keyed on the token,
// so concurrent consumers resolve to exactly one winner.
type ResetPasswordHandler struct {
	repo     RepositoryManager
	codec    SecretCodec
	tokenTTL string
}

// NewResetPasswordHandler creates a handler with sane defaults.
func NewResetPasswordHandler(repo RepositoryManager) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:     repo,
		codec:    BcryptCodec{},
		tokenTTL: DefaultTokenTTL,
	}
}

// WithCodec overrides the secret codec.
func (h *ResetPasswordHandler) WithCodec(codec SecretCodec) *ResetPasswordHandler {
	if codec != nil {
		h.codec = codec
	}
	return h
}

// WithTokenTTL overrides the consumption window, e.g. "48h".
func (h *ResetPasswordHandler) WithTokenTTL(pattern string) *ResetPasswordHandler {
	if pattern != "" {
		h.tokenTTL = pattern
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	account := &Account{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pending, err := h.repo.Accounts().FindByResetTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve reset token")
		}

		if pending.ResetRequestedAt != nil {
			expired, err := IsOutsideThresholdPeriod(*pending.ResetRequestedAt, h.tokenTTL)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check token expiration period")
			}
			if expired {
				return ErrInvalidToken
			}
		}

		hash, err := h.codec.Encode(event.Secret)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if account, err = h.repo.Accounts().ConsumeResetTokenTx(ctx, tx, event.Token, hash); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}
