package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	authorizationHeader = "Authorization"
	authScheme          = "Bearer"
	tokenCookieName     = "jwt"
	accountLocalsKey    = "account"
)

// HTTPAuth guards routes with session tokens. Every authenticated request
// emits a user activity event; the Session Coordinator turns those into
// lastSessionAt updates without blocking the request.
type HTTPAuth struct {
	auther       *Auther
	dispatcher   *Dispatcher
	logger       Logger
	now          Clock
	ErrorHandler func(c router.Context, err error) error
}

// NewHTTPAuth wires the route guard around an Auther.
func NewHTTPAuth(auther *Auther, dispatcher *Dispatcher) *HTTPAuth {
	a := &HTTPAuth{
		auther:     auther,
		dispatcher: dispatcher,
		logger:     defLogger{},
		now:        time.Now,
	}
	a.ErrorHandler = a.defaultErrHandler
	return a
}

func (a *HTTPAuth) WithLogger(logger Logger) *HTTPAuth {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithHTTPAuthClock overrides the clock used to timestamp activity events.
func (a *HTTPAuth) WithHTTPAuthClock(clock Clock) *HTTPAuth {
	if clock != nil {
		a.now = clock
	}
	return a
}

// RequireAuth validates the session token carried in the Authorization
// header or the jwt cookie, loads the account, and stores it in both the
// request context and router locals for downstream handlers.
func (a *HTTPAuth) RequireAuth() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := extractToken(ctx)
			if err != nil {
				return a.ErrorHandler(ctx, err)
			}

			accountID, err := a.auther.TokenService().Validate(raw)
			if err != nil {
				return a.ErrorHandler(ctx, err)
			}

			account, err := a.auther.findByID(ctx.Context(), accountID)
			if err != nil {
				return a.ErrorHandler(ctx, err)
			}

			ctx.Locals(accountLocalsKey, account)
			ctx.SetContext(WithContext(ctx.Context(), account))

			a.dispatcher.Emit(ctx.Context(), UserActivityMessage{
				AccountID:    account.ID.String(),
				ActivityTime: a.now(),
			})

			return next(ctx)
		}
	}
}

// AccountFromRouterContext returns the account RequireAuth stored for this
// request.
func AccountFromRouterContext(ctx router.Context) (*Account, bool) {
	account, ok := ctx.Locals(accountLocalsKey).(*Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}

func extractToken(ctx router.Context) (string, error) {
	header := ctx.GetString(authorizationHeader, "")
	if header != "" {
		l := len(authScheme)
		if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
			return strings.TrimSpace(header[l:]), nil
		}
		return "", ErrTokenMalformed
	}

	if cookie := ctx.Cookies(tokenCookieName); cookie != "" {
		return cookie, nil
	}

	return "", ErrTokenMalformed
}

func (a *HTTPAuth) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "invalid authentication token").
			WithCode(errors.CodeUnauthorized)
	}

	a.logger.Info(
		"request rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"category", richErr.Category,
	)

	return c.JSON(statusForError(richErr), map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// statusForError maps error categories to HTTP status codes. The explicit
// Code wins when set; categories cover errors raised deeper in the domain.
func statusForError(err *errors.Error) int {
	if err.Code >= 400 {
		return err.Code
	}

	switch err.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return http.StatusUnauthorized
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
