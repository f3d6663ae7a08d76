package auth

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Controller serves the JSON auth and user API.
type Controller struct {
	Logger       Logger
	Auther       *Auther
	Guard        *HTTPAuth
	Repo         Accounts
	Config       Config
	ErrorHandler func(c router.Context, err error) error
	now          Clock
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerClock overrides the clock used for statistics queries.
func WithControllerClock(clock Clock) ControllerOption {
	return func(c *Controller) *Controller {
		if clock != nil {
			c.now = clock
		}
		return c
	}
}

// NewController builds the API controller. Auther, Guard, Repo and Config
// are required; the constructor panics on missing collaborators the same
// way a nil route table would, at startup rather than per request.
func NewController(auther *Auther, guard *HTTPAuth, repo Accounts, cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
		Auther: auther,
		Guard:  guard,
		Repo:   repo,
		Config: cfg,
		now:    time.Now,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("missing Auther in api controller")
	}
	if c.Guard == nil {
		panic("missing HTTPAuth guard in api controller")
	}
	if c.Repo == nil {
		panic("missing account repository in api controller")
	}

	c.ErrorHandler = c.Guard.ErrorHandler

	return c
}

// RegisterRoutes mounts the public auth endpoints and the token-guarded
// user endpoints.
func (c *Controller) RegisterRoutes(app RouteRegistrar) {
	requireAuth := c.Guard.RequireAuth()

	app.Post("/auth/signup", c.SignUp)
	app.Post("/auth/signin", c.SignIn)
	app.Post("/auth/verify-email", c.VerifyEmail)
	app.Post("/auth/firebase", c.SignInWithFirebase)
	app.Post("/auth/send-verification-email", c.SendVerificationEmail, requireAuth)

	app.Get("/user/profile", c.Profile, requireAuth)
	app.Patch("/user/profile", c.UpdateProfile, requireAuth)
	app.Patch("/user/reset-password", c.ResetPassword, requireAuth)
	app.Get("/user/dashboard", c.Dashboard, requireAuth)
	app.Get("/user/statistics", c.Statistics, requireAuth)
}

// SignUpRequest payload
type SignUpRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *Controller) SignUp(ctx router.Context) error {
	payload := new(SignUpRequest)

	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	account, err := c.Auther.SignUpWithEmail(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		c.Logger.Error("sign up failed", "email", payload.Email, "error", err)
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Auther.TokenService().Generate(account.ID.String())
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]any{
		"user":  account,
		"token": token,
	})
}

// SignInRequest payload
type SignInRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *Controller) SignIn(ctx router.Context) error {
	payload := new(SignInRequest)

	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Auther.SignIn(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

// VerifyEmailRequest payload
type VerifyEmailRequest struct {
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (c *Controller) VerifyEmail(ctx router.Context) error {
	payload := new(VerifyEmailRequest)

	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Auther.VerifyEmail(ctx.Context(), payload.Token)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

// FirebaseSignInRequest payload
type FirebaseSignInRequest struct {
	IDToken string `form:"id_token" json:"idToken"`
}

// Validate will run validation rules
func (r FirebaseSignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDToken, validation.Required),
	)
}

func (c *Controller) SignInWithFirebase(ctx router.Context) error {
	payload := new(FirebaseSignInRequest)

	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Auther.SignInWithFirebase(ctx.Context(), payload.IDToken)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

func (c *Controller) SendVerificationEmail(ctx router.Context) error {
	account, ok := AccountFromRouterContext(ctx)
	if !ok {
		return c.ErrorHandler(ctx, ErrTokenInvalid)
	}

	c.Auther.SendVerificationEmail(ctx.Context(), account)

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "sent",
	})
}

func (c *Controller) Profile(ctx router.Context) error {
	account, ok := AccountFromRouterContext(ctx)
	if !ok {
		return c.ErrorHandler(ctx, ErrTokenInvalid)
	}

	return ctx.JSON(router.StatusOK, account)
}

// UpdateProfileRequest payload
type UpdateProfileRequest struct {
	Name string `form:"name" json:"name"`
}

// Validate will run validation rules
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

func (c *Controller) UpdateProfile(ctx router.Context) error {
	account, ok := AccountFromRouterContext(ctx)
	if !ok {
		return c.ErrorHandler(ctx, ErrTokenInvalid)
	}

	payload := new(UpdateProfileRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	account.Name = payload.Name
	account, err := c.Repo.Save(ctx.Context(), account)
	if err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to persist profile"))
	}

	return ctx.JSON(router.StatusOK, account)
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	OldPassword string `form:"old_password" json:"oldPassword"`
	NewPassword string `form:"new_password" json:"newPassword"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (c *Controller) ResetPassword(ctx router.Context) error {
	account, ok := AccountFromRouterContext(ctx)
	if !ok {
		return c.ErrorHandler(ctx, ErrTokenInvalid)
	}

	payload := new(ResetPasswordRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if err := c.Auther.ResetPassword(ctx.Context(), account, payload.OldPassword, payload.NewPassword); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "updated",
	})
}

func (c *Controller) Dashboard(ctx router.Context) error {
	entries, err := c.Repo.Dashboard(ctx.Context())
	if err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to load dashboard"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": entries,
	})
}

func (c *Controller) Statistics(ctx router.Context) error {
	stats, err := c.Repo.Statistics(ctx.Context(), c.now(), c.Config.GetDayBoundaryUTC())
	if err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to load statistics"))
	}

	return ctx.JSON(router.StatusOK, stats)
}

// bind parses and validates a request payload, normalizing both failure
// modes into validation errors.
func (c *Controller) bind(ctx router.Context, payload interface{ Validate() error }) error {
	if err := ctx.Bind(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid request payload").
			WithCode(errors.CodeBadRequest)
	}

	return nil
}
