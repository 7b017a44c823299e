package accounts

import (
	"context"
	"fmt"
	"strings"
)

// Purpose names the kind of message a notifier is asked to deliver.
type Purpose string

const (
	// PurposeVerify is an email verification message.
	PurposeVerify Purpose = "verify"
	// PurposeReset is a password reset message.
	PurposeReset Purpose = "reset"
)

// Notifier delivers a link to a recipient for a given purpose. Implementations
// are invoked for side effects only; a failure is reported to the caller but
// never rolls back committed state.
type Notifier interface {
	Notify(ctx context.Context, recipient string, purpose Purpose, link string) error
}

// Links builds the URLs embedded in outgoing messages. Thread an explicit
// value into handler constructors instead of reading ambient configuration.
type Links struct {
	BaseURL    string
	VerifyPath string
	ResetPath  string
}

// DefaultLinks matches the paths the frontend serves.
func DefaultLinks(baseURL string) Links {
	return Links{
		BaseURL:    baseURL,
		VerifyPath: "/verify-email",
		ResetPath:  "/reset-password",
	}
}

// VerificationLink returns the email verification URL for a token.
func (l Links) VerificationLink(token string) string {
	return l.build(l.VerifyPath, token)
}

// ResetLink returns the password reset URL for a token.
func (l Links) ResetLink(token string) string {
	return l.build(l.ResetPath, token)
}

func (l Links) build(path, token string) string {
	base := strings.TrimSuffix(l.BaseURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return fmt.Sprintf("%s%s?token=%s", base, path, token)
}
