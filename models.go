package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the unit of identity. It may carry local credentials (student id
// plus encoded secret), a federated subject, or both.
type Account struct {
	bun.BaseModel      `bun:"table:accounts,alias:act"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName          string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName           string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email              string     `bun:"email,notnull,unique" json:"email,omitempty"`
	StudentID          string     `bun:"student_id,nullzero,unique" json:"student_id,omitempty"`
	SecretHash         string     `bun:"secret_hash,nullzero" json:"-"`
	FederatedSubject   string     `bun:"federated_subject,nullzero,unique" json:"-"`
	EmailVerified      bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	VerificationToken  string     `bun:"verification_token,nullzero" json:"-"`
	VerificationSentAt *time.Time `bun:"verification_sent_at,nullzero" json:"-"`
	ResetToken         string     `bun:"reset_token,nullzero" json:"-"`
	ResetRequestedAt   *time.Time `bun:"reset_requested_at,nullzero" json:"-"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt          *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasLocalCredential reports whether the account can log in with a student id
// and secret.
func (a *Account) HasLocalCredential() bool {
	return a != nil && a.SecretHash != ""
}

// HasFederatedIdentity reports whether a federated subject is linked.
func (a *Account) HasFederatedIdentity() bool {
	return a != nil && a.FederatedSubject != ""
}

// Profile returns the public subset exposed after a successful login. It never
// includes the encoded secret or any pending token.
func (a *Account) Profile() Profile {
	if a == nil {
		return Profile{}
	}
	return Profile{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		StudentID: a.StudentID,
	}
}

// Profile is the caller facing view of an account.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StudentID string `json:"student_id,omitempty"`
}
