package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	StudentID string `json:"student_id"`
	Secret    string `json:"password"`

	OnResponse func(account *Account)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler creates an unverified account and sends the
// verification link. The account is durably created before the send: a
// delivery failure is reported but never rolled back.
type RegisterAccountHandler struct {
	repo     RepositoryManager
	codec    SecretCodec
	tokens   TokenGenerator
	notifier Notifier
	links    Links
	logger   Logger
}

// NewRegisterAccountHandler creates a handler with sane defaults.
func NewRegisterAccountHandler(repo RepositoryManager, notifier Notifier, links Links) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:     repo,
		notifier: notifier,
		links:    links,
		codec:    BcryptCodec{},
		tokens:   NewTokenGenerator(),
		logger:   defLogger{},
	}
}

// WithCodec overrides the secret codec.
func (h *RegisterAccountHandler) WithCodec(codec SecretCodec) *RegisterAccountHandler {
	if codec != nil {
		h.codec = codec
	}
	return h
}

// WithTokenGenerator overrides the token generator.
func (h *RegisterAccountHandler) WithTokenGenerator(tokens TokenGenerator) *RegisterAccountHandler {
	if tokens != nil {
		h.tokens = tokens
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if h.notifier == nil {
		return ErrNotifierUnconfigured
	}

	account := &Account{}
	token := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// student id collision wins the tie break over email, so check it first
		if _, err := h.repo.Accounts().FindByStudentIDTx(ctx, tx, event.StudentID); err == nil {
			return ErrStudentIDTaken
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check student id")
		}

		if _, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email")
		}

		hash, err := h.codec.Encode(event.Secret)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
		}

		if token, err = h.tokens.Generate(); err != nil {
			return err
		}

		now := time.Now()
		account.FirstName = event.FirstName
		account.LastName = event.LastName
		account.Email = event.Email
		account.StudentID = event.StudentID
		account.SecretHash = hash
		account.EmailVerified = false
		account.VerificationToken = token
		account.VerificationSentAt = &now

		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	if err := h.notifier.Notify(ctx, account.Email, PurposeVerify, h.links.VerificationLink(token)); err != nil {
		h.logger.Error("verification email delivery failed: %v", err)
		return DeliveryError(err)
	}

	return nil
}
