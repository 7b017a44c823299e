package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ForgotPasswordMessage struct {
	Email string `json:"email"`

	OnResponse func(account *Account)
}

func (e ForgotPasswordMessage) Type() string { return "account.forgot_password" }

// ForgotPasswordHandler issues a fresh reset token, overwriting any previous
// one, and sends the reset link. Verification state is not required.
type ForgotPasswordHandler struct {
	repo     RepositoryManager
	tokens   TokenGenerator
	notifier Notifier
	links    Links
	logger   Logger
}

// NewForgotPasswordHandler creates a handler with sane defaults.
func NewForgotPasswordHandler(repo RepositoryManager, notifier Notifier, links Links) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		repo:     repo,
		notifier: notifier,
		links:    links,
		tokens:   NewTokenGenerator(),
		logger:   defLogger{},
	}
}

// WithTokenGenerator overrides the token generator.
func (h *ForgotPasswordHandler) WithTokenGenerator(tokens TokenGenerator) *ForgotPasswordHandler {
	if tokens != nil {
		h.tokens = tokens
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ForgotPasswordHandler) WithLogger(logger Logger) *ForgotPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) error {
	if h.notifier == nil {
		return ErrNotifierUnconfigured
	}

	account := &Account{}
	token := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		if token, err = h.tokens.Generate(); err != nil {
			return err
		}

		now := time.Now()
		account.ResetToken = token
		account.ResetRequestedAt = &now

		if _, err := h.repo.Accounts().UpdateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	if err := h.notifier.Notify(ctx, account.Email, PurposeReset, h.links.ResetLink(token)); err != nil {
		h.logger.Error("reset email delivery failed: %v", err)
		return DeliveryError(err)
	}

	return nil
}
