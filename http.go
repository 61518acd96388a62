package authgate

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authgate/middleware/bearer"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// LoginRequest is the OAuth2 password flow form
type LoginRequest struct {
	GrantType string `form:"grant_type" json:"grant_type"`
	Username  string `form:"username" json:"username"`
	Password  string `form:"password" json:"password"`
	Scope     string `form:"scope" json:"scope"`
}

// Validate will run validation rules. Empty credentials are left to the
// authenticator so they fail like any other bad pair.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GrantType, validation.In("password")),
	)
}

// RouteAuthenticator exposes the gateway over fiber
type RouteAuthenticator struct {
	gateway      *Gateway
	cfg          Config
	Logger       Logger
	ErrorHandler func(router.Context, error) error
}

func NewHTTPAuthenticator(gateway *Gateway) (*RouteAuthenticator, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required", errors.CategoryBadInput)
	}

	a := &RouteAuthenticator{
		gateway: gateway,
		cfg:     gateway.Config(),
		Logger:  gateway.logger,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// RegisterAuthRoutes mounts the token endpoint on the router
func RegisterAuthRoutes[T any](app router.Router[T], auther *RouteAuthenticator) {
	app.Post("/token", auther.LoginHandler)
}

// LoginHandler handles POST /token
func (a *RouteAuthenticator) LoginHandler(c router.Context) error {
	payload := new(LoginRequest)
	if err := c.Bind(payload); err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryBadInput, "invalid login form").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, errors.FromOzzoValidation(err, "invalid login form").
			WithCode(errors.CodeBadRequest))
	}

	res, err := a.gateway.Login(c.Context(), payload.Username, payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	c.SetHeader(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.StatusOK, res)
}

// ProtectedRoute returns a middleware that only lets active, authenticated
// users through. The user is available via CurrentUser and FromContext.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return bearer.New(bearer.Config{
		Authorizer: bearer.AuthorizerFunc(func(ctx context.Context, token string) (any, error) {
			return a.gateway.Authorize(ctx, token)
		}),
		ErrorHandler: a.ErrorHandler,
		ContextKey:   a.cfg.GetContextKey(),
		TokenLookup:  a.cfg.GetTokenLookup(),
		AuthScheme:   a.cfg.GetAuthScheme(),
		ContextEnricher: func(ctx context.Context, principal any) context.Context {
			if user, ok := principal.(*User); ok {
				return WithContext(ctx, user)
			}
			return ctx
		},
	})
}

// Handle renders err with the configured error handler. Route handlers use
// it so every failure shares one response shape.
func (a *RouteAuthenticator) Handle(c router.Context, err error) error {
	return a.ErrorHandler(c, err)
}

// FiberErrorHandler renders errors that reach the fiber app, such as
// unmatched routes, with the same handler.
func (a *RouteAuthenticator) FiberErrorHandler(c *fiber.Ctx, err error) error {
	return a.ErrorHandler(router.NewFiberContext(c), err)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	if errors.Is(err, bearer.ErrMissingOrMalformed) {
		err = ErrMissingToken
	}

	var richErr *errors.Error
	var fiberErr *fiber.Error
	if errors.As(err, &richErr) {
		richErr = richErr.Clone()
	} else if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		richErr = errors.New(fiberErr.Message, fiberCategory(fiberErr.Code)).
			WithCode(fiberErr.Code)
	} else {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := StatusCode(richErr)
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request %s %s failed: %v", c.Method(), c.Path(), err)
		// internal details stay in the log
		richErr = errors.New("An unexpected server error occurred", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	} else {
		a.Logger.Debug("request %s %s rejected: %s", c.Method(), c.Path(), richErr.TextCode)
	}

	if status == fiber.StatusUnauthorized {
		c.SetHeader(fiber.HeaderWWWAuthenticate, a.cfg.GetAuthScheme())
	}

	richErr.Source = nil
	richErr.Location = nil

	return c.JSON(status, richErr.ToErrorResponse(false, nil))
}

func fiberCategory(code int) errors.Category {
	switch code {
	case fiber.StatusNotFound:
		return errors.CategoryNotFound
	case fiber.StatusMethodNotAllowed:
		return errors.CategoryMethodNotAllowed
	default:
		return errors.CategoryBadInput
	}
}
