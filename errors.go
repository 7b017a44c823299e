package accounts

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeStudentIDExists        = "account_student_id_exists"
	TextCodeEmailExists            = "account_email_exists"
	TextCodeFederatedSubjectExists = "account_federated_subject_exists"
	TextCodeInvalidCredentials     = "account_invalid_credentials"
	TextCodeEmailNotVerified       = "account_email_not_verified"
	TextCodeNotFound               = "account_not_found"
	TextCodeInvalidToken           = "account_invalid_token"
	TextCodeDeliveryFailed         = "account_delivery_failed"
	TextCodeUnconfigured           = "account_notifier_unconfigured"
)

// ErrStudentIDTaken is returned when registering with a student id that is
// already in use. Checked before the email collision on purpose: when both
// collide the student id wins the tie break.
var ErrStudentIDTaken = errors.New("student id already registered", errors.CategoryConflict).
	WithTextCode(TextCodeStudentIDExists).
	WithCode(errors.CodeConflict)

// ErrEmailTaken is returned when registering with an email that is already in use.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrFederatedSubjectTaken is returned when a federated subject is already
// linked to another account.
var ErrFederatedSubjectTaken = errors.New("federated identity already linked", errors.CategoryConflict).
	WithTextCode(TextCodeFederatedSubjectExists).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials covers both an unknown student id and a wrong secret.
// Intentionally unspecific so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid student id or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound is returned for email lookups where existence is not
// sensitive to hide (resend verification, forgot password).
var ErrAccountNotFound = errors.New("no account registered for that email", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidToken covers tokens that were never issued, already consumed, or
// expired. The causes are intentionally indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeBadRequest)

// ErrNotifierUnconfigured is returned before attempting an operation that
// needs delivery when no notifier is wired.
var ErrNotifierUnconfigured = errors.New("mail transport not configured", errors.CategoryInternal).
	WithTextCode(TextCodeUnconfigured).
	WithCode(errors.CodeInternal)

// EmailNotVerifiedError blocks login until verification. It carries the
// account email so the caller can offer a resend action.
func EmailNotVerifiedError(email string) *errors.Error {
	return errors.New("email not verified", errors.CategoryAuth).
		WithTextCode(TextCodeEmailNotVerified).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{"email": email})
}

// DeliveryError wraps a notifier failure. State committed before the send is
// never rolled back, so the caller sees the account created and the delivery
// failure reported.
func DeliveryError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryOperation, "failed to deliver notification").
		WithTextCode(TextCodeDeliveryFailed).
		WithCode(errors.CodeInternal)
}

// IsUniqueViolation will check for a uniqueness constraint error surfaced by
// the record store driver. The store wraps driver errors and its outer message
// never carries the cause, so the whole unwrap chain is inspected.
func IsUniqueViolation(err error) bool {
	msg := chainMessages(err)
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// ConflictError maps a driver uniqueness violation to the typed conflict for
// the colliding column. Unknown columns fall back to a generic conflict.
func ConflictError(err error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	msg := chainMessages(err)
	switch {
	case strings.Contains(msg, "student_id"):
		return ErrStudentIDTaken
	case strings.Contains(msg, "federated_subject"):
		return ErrFederatedSubjectTaken
	case strings.Contains(msg, "email"):
		return ErrEmailTaken
	}

	return errors.Wrap(err, errors.CategoryConflict, "account already exists").
		WithCode(errors.CodeConflict)
}

// chainMessages concatenates every message in the unwrap chain. The driver
// text only appears on the innermost error.
func chainMessages(err error) string {
	var sb strings.Builder
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
