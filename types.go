package accounts

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the handlers need.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// FederatedClaim carries an already validated federated identity: the core
// never parses or verifies the provider token itself.
type FederatedClaim struct {
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	// StudentID is optional on first contact; see FederatedReconciler.
	StudentID string `json:"student_id,omitempty"`
}

// FederatedReconciler resolves a claim to an existing or new account. The
// boolean result reports whether a new account was created.
type FederatedReconciler interface {
	Reconcile(ctx context.Context, claim FederatedClaim) (*Account, bool, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
