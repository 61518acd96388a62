package authgate

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and verifies HS256 bearer tokens
type TokenService struct {
	signingKey []byte
	defaultTTL time.Duration
	issuer     string
	now        Clock
	logger     Logger
}

var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenVerifier = (*TokenService)(nil)
)

// NewTokenService creates a TokenService from the signing configuration
func NewTokenService(cfg Config, logger Logger) (*TokenService, error) {
	if cfg == nil {
		return nil, errors.New("token service config is required", errors.CategoryBadInput)
	}

	if cfg.GetSigningMethod() != SigningMethodHS256 {
		return nil, errors.New("unsupported signing method", errors.CategoryBadInput).
			WithMetadata(map[string]any{"signing_method": cfg.GetSigningMethod()})
	}

	if cfg.GetSigningKey() == "" {
		return nil, errors.New("signing key is required", errors.CategoryBadInput)
	}

	ttl := cfg.GetTokenTTL()
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		defaultTTL: ttl,
		issuer:     cfg.GetIssuer(),
		now:        time.Now,
		logger:     normalizeLogger(logger),
	}, nil
}

// WithClock overrides the time source used for iat, exp and validation
func (ts *TokenService) WithClock(clock Clock) *TokenService {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// DefaultTTL is the TTL applied by IssueDefault
func (ts *TokenService) DefaultTTL() time.Duration {
	return ts.defaultTTL
}

// IssueDefault issues a token using the configured TTL
func (ts *TokenService) IssueDefault(username string) (string, time.Time, error) {
	return ts.Issue(username, ts.defaultTTL)
}

// Issue signs a token for username that expires after ttl. A zero ttl
// yields a token that is already expired.
func (ts *TokenService) Issue(username string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(username) == "" {
		return "", time.Time{}, errors.New("username is required", errors.CategoryBadInput)
	}

	if ttl < 0 {
		return "", time.Time{}, errors.New("token TTL must be non-negative", errors.CategoryBadInput)
	}

	now := ts.now()
	expiresAt := expiryFor(now, ttl)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	ensureTokenID(&claims.RegisteredClaims)

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, claims.Expires(), nil
}

// expiryFor returns now+ttl on the whole second exp is encoded with. A
// positive ttl rounds up so the token outlives ttl; zero rounds down so the
// token is already expired.
func expiryFor(now time.Time, ttl time.Duration) time.Time {
	exact := now.Add(ttl)
	exp := exact.Truncate(time.Second)
	if ttl > 0 && exp.Before(exact) {
		exp = exp.Add(time.Second)
	}
	return exp
}

// SignClaims signs the given claims with the configured key
func (ts *TokenService) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify checks signature, algorithm and expiry and returns the subject
func (ts *TokenService) Verify(tokenString string) (string, error) {
	claims, err := ts.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// Parse validates a token and returns its claims
func (ts *TokenService) Parse(tokenString string) (*TokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethodHS256}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		// exp is only trusted once the signature checked out
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrExpiredToken
		}
		ts.logger.Debug("token verification failed: %v", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject() == "" {
		return nil, ErrInvalidToken
	}

	// NumericDate truncates to seconds, so exp can equal now exactly
	if !claims.Expires().After(ts.now()) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}
