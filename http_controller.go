package accounts

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ControllerRoutes holds the paths the controller mounts.
type ControllerRoutes struct {
	Register           string
	Login              string
	FederatedLogin     string
	VerifyEmail        string
	ResendVerification string
	ForgotPassword     string
	ResetPassword      string
}

// Controller exposes the lifecycle operations as a JSON API. It is a thin
// adapter: every route binds a payload, validates it, and dispatches the
// matching command handler.
type Controller struct {
	Logger       Logger
	Routes       *ControllerRoutes
	ErrorHandler func(router.Context, error) error

	Register  *RegisterAccountHandler
	Login     *LoginHandler
	Verify    *VerifyEmailHandler
	Resend    *ResendVerificationHandler
	Forgot    *ForgotPasswordHandler
	Reset     *ResetPasswordHandler
	Federated FederatedReconciler
}

// ControllerOption mutates the controller during construction.
type ControllerOption func(*Controller) *Controller

// NewController wires a controller with default routes.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
		Routes: &ControllerRoutes{
			Register:           "/register",
			Login:              "/login",
			FederatedLogin:     "/federated/login",
			VerifyEmail:        "/verify-email",
			ResendVerification: "/resend-verification",
			ForgotPassword:     "/forgot-password",
			ResetPassword:      "/reset-password",
		},
	}
	c.ErrorHandler = c.renderError

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// WithHandlers sets every lifecycle handler at once.
func WithHandlers(
	register *RegisterAccountHandler,
	login *LoginHandler,
	verify *VerifyEmailHandler,
	resend *ResendVerificationHandler,
	forgot *ForgotPasswordHandler,
	reset *ResetPasswordHandler,
) ControllerOption {
	return func(c *Controller) *Controller {
		c.Register = register
		c.Login = login
		c.Verify = verify
		c.Resend = resend
		c.Forgot = forgot
		c.Reset = reset
		return c
	}
}

// WithFederatedReconciler sets the reconciler behind the federated login route.
func WithFederatedReconciler(r FederatedReconciler) ControllerOption {
	return func(c *Controller) *Controller {
		c.Federated = r
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterAccountRoutes mounts the lifecycle routes on the given router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...ControllerOption) *Controller {
	controller := NewController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("account.register")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("account.login")
	app.Post(controller.Routes.FederatedLogin, controller.FederatedLoginPost).
		SetName("account.federated-login")
	app.Get(controller.Routes.VerifyEmail, controller.VerifyEmailGet).
		SetName("account.verify-email")
	app.Post(controller.Routes.ResendVerification, controller.ResendVerificationPost).
		SetName("account.resend-verification")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("account.forgot-password")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).
		SetName("account.reset-password")

	return controller
}

// RegisterPayload is the registration body.
type RegisterPayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	StudentID string `form:"student_id" json:"student_id"`
	Password  string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.StudentID, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *Controller) RegisterPost(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	req := RegisterAccountMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		StudentID: payload.StudentID,
		Secret:    payload.Password,
	}

	if err := a.Register.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register account error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Account registered successfully. Please check your email to verify your account.",
	})
}

// LoginRequestPayload is the login body.
type LoginRequestPayload struct {
	StudentID string `form:"student_id" json:"student_id"`
	Password  string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r LoginRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StudentID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) LoginPost(ctx router.Context) error {
	payload := new(LoginRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	var profile Profile
	req := LoginMessage{
		StudentID: payload.StudentID,
		Secret:    payload.Password,
		OnResponse: func(p Profile) {
			profile = p
		},
	}

	if err := a.Login.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    profile,
	})
}

// FederatedLoginPayload carries an already validated claim. The transport in
// front of this route is responsible for verifying the provider token.
type FederatedLoginPayload struct {
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	StudentID  string `json:"student_id"`
}

// Validate will validate the payload
func (r FederatedLoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Subject, validation.Required),
	)
}

func (a *Controller) FederatedLoginPost(ctx router.Context) error {
	payload := new(FederatedLoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	account, isNew, err := a.Federated.Reconcile(ctx.Context(), FederatedClaim{
		Email:      payload.Email,
		Subject:    payload.Subject,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
		StudentID:  payload.StudentID,
	})
	if err != nil {
		a.Logger.Error("federated login error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message":  "Login successful",
		"user":     account.Profile(),
		"new_user": isNew,
	})
}

func (a *Controller) VerifyEmailGet(ctx router.Context) error {
	token := ctx.Query("token")
	if token == "" {
		return a.ErrorHandler(ctx, ErrInvalidToken)
	}

	req := VerifyEmailMessage{Token: token}
	if err := a.Verify.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Email verified successfully",
	})
}

// EmailPayload is the body shared by resend and forgot password.
type EmailPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *Controller) ResendVerificationPost(ctx router.Context) error {
	payload := new(EmailPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	var resp *ResendVerificationResponse
	req := ResendVerificationMessage{
		Email: payload.Email,
		OnResponse: func(r *ResendVerificationResponse) {
			resp = r
		},
	}

	if err := a.Resend.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if resp != nil && resp.AlreadyVerified {
		return ctx.JSON(http.StatusOK, map[string]any{
			"message": "Email is already verified",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Verification email resent",
	})
}

func (a *Controller) ForgotPasswordPost(ctx router.Context) error {
	payload := new(EmailPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	req := ForgotPasswordMessage{Email: payload.Email}
	if err := a.Forgot.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Reset email sent",
	})
}

// ResetPasswordPayload is the reset body.
type ResetPasswordPayload struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *Controller) ResetPasswordPost(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return a.invalidPayload(ctx, err)
	}

	req := ResetPasswordMessage{
		Token:  payload.Token,
		Secret: payload.Password,
	}

	if err := a.Reset.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message": "Password reset successfully",
	})
}

func (a *Controller) badPayload(ctx router.Context, err error) error {
	a.Logger.Error("failed to parse payload: %v", err)
	return ctx.JSON(http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "failed to parse request body",
		},
	})
}

func (a *Controller) invalidPayload(ctx router.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message":    "invalid request payload",
			"validation": err.Error(),
		},
	})
}

// renderError maps the error taxonomy to a stable JSON envelope. Store error
// internals never leak; only the category message, text code, and whitelisted
// metadata (e.g. the email on EmailNotVerified) go out.
func (a *Controller) renderError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := map[string]any{
		"message": richErr.Message,
		"code":    richErr.TextCode,
	}
	if len(richErr.Metadata) > 0 {
		body["details"] = richErr.Metadata
	}

	return ctx.JSON(status, map[string]any{"error": body})
}
