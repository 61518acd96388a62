package bearer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization
	// ErrMissingOrMalformed is returned when no extractor found a token
	ErrMissingOrMalformed = errors.New("missing or malformed bearer token")
)

// Authorizer turns a raw bearer token into the request principal. It is
// declared here so the middleware does not depend on the gateway package.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (any, error)
}

// AuthorizerFunc adapts a function into an Authorizer.
type AuthorizerFunc func(ctx context.Context, token string) (any, error)

// Authorize satisfies the Authorizer interface.
func (f AuthorizerFunc) Authorize(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}

// ValidationListener is invoked after a principal has been authorized.
type ValidationListener func(ctx router.Context, principal any) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   func(router.Context, error) error
	// Authorizer is required
	Authorizer  Authorizer
	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// ContextEnricher propagates the principal to the request's std context
	ContextEnricher func(ctx context.Context, principal any) context.Context

	ValidationListeners []ValidationListener
}

// New returns a middleware that rejects requests without a valid bearer token.
// The principal is stored in the request store under ContextKey.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawToken(ctx, extractors)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			principal, err := cfg.Authorizer.Authorize(ctx.Context(), raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if err := cfg.runValidationListeners(ctx, principal); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Set(cfg.ContextKey, principal)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), principal))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authorizer == nil {
		panic("AUTHGATE: bearer middleware configuration: Authorizer is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorHandler == nil {
		scheme := cfg.AuthScheme
		cfg.ErrorHandler = func(c router.Context, err error) error {
			c.SetHeader(fiber.HeaderWWWAuthenticate, scheme)
			if errors.Is(err, ErrMissingOrMalformed) {
				return c.Status(fiber.StatusUnauthorized).Send([]byte("Not authenticated"))
			}
			return c.Status(fiber.StatusUnauthorized).Send([]byte("Invalid or expired token"))
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	return cfg
}

func (cfg *Config) getExtractors() []Extractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, principal any) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, principal); err != nil {
			return err
		}
	}
	return nil
}

// ExtractRawToken returns the first token any extractor finds
func ExtractRawToken(ctx router.Context, extractors []Extractor) (string, error) {
	err := ErrMissingOrMalformed

	for _, extractor := range extractors {
		raw, xerr := extractor(ctx)
		if raw != "" && xerr == nil {
			return raw, nil
		}
		if xerr != nil {
			err = xerr
		}
	}

	return "", err
}

type Extractor func(c router.Context) (string, error)

// GetExtractors parses a lookup such as
// "header:Authorization,cookie:jwt,query:auth_token,param:token".
func GetExtractors(tokenLookup string, authSchemes ...string) []Extractor {
	extractors := make([]Extractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		switch source {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, fromQuery(name))
		case "param":
			extractors = append(extractors, fromParam(name))
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		}
	}

	return extractors
}

// fromHeader returns a function that extracts token from the request header.
func fromHeader(header string, authScheme string) Extractor {
	return func(c router.Context) (string, error) {
		a := strings.TrimSpace(c.Header(header))
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			if token := strings.TrimSpace(a[l:]); token != "" {
				return token, nil
			}
		}
		return "", ErrMissingOrMalformed
	}
}

// fromQuery returns a function that extracts token from the query string.
func fromQuery(param string) Extractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

// fromParam returns a function that extracts token from the url param string.
func fromParam(param string) Extractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param, "")
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

// fromCookie returns a function that extracts token from the named cookie.
// router.Context only exposes headers, so the Cookie header is parsed here.
func fromCookie(name string) Extractor {
	return func(c router.Context) (string, error) {
		req := http.Request{Header: http.Header{"Cookie": {c.Header("Cookie")}}}
		cookie, err := req.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingOrMalformed
		}
		return cookie.Value, nil
	}
}
