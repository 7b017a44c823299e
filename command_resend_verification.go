package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ResendVerificationMessage struct {
	Email string `json:"email"`

	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "account.resend_verification" }

type ResendVerificationResponse struct {
	// AlreadyVerified marks the idempotent no-op: the account was verified
	// before this request and nothing was sent.
	AlreadyVerified bool
}

// ResendVerificationHandler rotates the pending verification token and sends a
// fresh link. Rotation overwrites any outstanding token, invalidating it.
type ResendVerificationHandler struct {
	repo     RepositoryManager
	tokens   TokenGenerator
	notifier Notifier
	links    Links
	logger   Logger
}

// NewResendVerificationHandler creates a handler with sane defaults.
func NewResendVerificationHandler(repo RepositoryManager, notifier Notifier, links Links) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:     repo,
		notifier: notifier,
		links:    links,
		tokens:   NewTokenGenerator(),
		logger:   defLogger{},
	}
}

// WithTokenGenerator overrides the token generator.
func (h *ResendVerificationHandler) WithTokenGenerator(tokens TokenGenerator) *ResendVerificationHandler {
	if tokens != nil {
		h.tokens = tokens
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	if h.notifier == nil {
		return ErrNotifierUnconfigured
	}

	resp := &ResendVerificationResponse{}
	recipient := ""
	token := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for resend")
		}

		if account.EmailVerified {
			resp.AlreadyVerified = true
			return nil
		}

		if token, err = h.tokens.Generate(); err != nil {
			return err
		}

		now := time.Now()
		account.VerificationToken = token
		account.VerificationSentAt = &now

		if _, err := h.repo.Accounts().UpdateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate verification token")
		}

		recipient = account.Email
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resend verification")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	if resp.AlreadyVerified {
		return nil
	}

	if err := h.notifier.Notify(ctx, recipient, PurposeVerify, h.links.VerificationLink(token)); err != nil {
		h.logger.Error("verification email delivery failed: %v", err)
		return DeliveryError(err)
	}

	return nil
}
