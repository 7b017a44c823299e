package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type LoginMessage struct {
	StudentID string `json:"student_id"`
	Secret    string `json:"password"`

	OnResponse func(profile Profile)
}

func (e LoginMessage) Type() string { return "account.login" }

// LoginHandler verifies a local credential. A missing account and a wrong
// secret both come back as ErrInvalidCredentials so callers cannot enumerate
// registered student ids.
type LoginHandler struct {
	repo  RepositoryManager
	codec SecretCodec
}

// NewLoginHandler creates a handler with sane defaults.
func NewLoginHandler(repo RepositoryManager) *LoginHandler {
	return &LoginHandler{
		repo:  repo,
		codec: BcryptCodec{},
	}
}

// WithCodec overrides the secret codec.
func (h *LoginHandler) WithCodec(codec SecretCodec) *LoginHandler {
	if codec != nil {
		h.codec = codec
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().FindByStudentID(ctx, event.StudentID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for login")
	}

	if !account.HasLocalCredential() {
		return ErrInvalidCredentials
	}

	if err := h.codec.Compare(event.Secret, account.SecretHash); err != nil {
		return ErrInvalidCredentials
	}

	if !account.EmailVerified {
		return EmailNotVerifiedError(account.Email)
	}

	if event.OnResponse != nil {
		event.OnResponse(account.Profile())
	}

	return nil
}
