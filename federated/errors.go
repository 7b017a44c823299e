package federated

import "github.com/goliatone/go-errors"

const (
	TextCodeMissingSubject = "federated_missing_subject"
	TextCodeMissingEmail   = "federated_missing_email"
)

// ErrMissingSubject is returned when a claim arrives without a subject id.
var ErrMissingSubject = errors.New("federated claim has no subject", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingSubject).
	WithCode(errors.CodeBadRequest)

// ErrMissingEmail is returned when a claim arrives without an email.
var ErrMissingEmail = errors.New("federated claim has no email", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)
