// Package accounts implements the account identity core for a single tenant
// application: registration with uniqueness enforcement, credential login,
// single use email verification and password reset tokens, and reconciliation
// of federated identity claims against local accounts.
//
// Lifecycle operations:
//   - Each operation is a command handler (RegisterAccountHandler,
//     LoginHandler, VerifyEmailHandler, ResendVerificationHandler,
//     ForgotPasswordHandler, ResetPasswordHandler) that runs inside a store
//     transaction and returns typed errors from the taxonomy in errors.go.
//   - Verification and reset tokens are single use and time boxed. Consumption
//     is a conditional UPDATE keyed on the token column, so two concurrent
//     requests presenting the same token resolve to exactly one winner.
//
// Collaborators:
//   - The Notifier contract covers message delivery. Delivery failures are
//     reported but never roll back committed state; see notify for the SMTP
//     and console implementations.
//   - Federated claims arrive already validated. The federated subpackage
//     resolves them to an existing or new account.
package accounts
