package authgate

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

const (
	// SigningMethodHS256 is the only signing algorithm the gateway accepts
	SigningMethodHS256 = "HS256"
	// DefaultTokenTTL applies when no TTL is configured
	DefaultTokenTTL = 15 * time.Minute

	DefaultContextKey  = "user"
	DefaultAuthScheme  = "Bearer"
	DefaultTokenLookup = "header:Authorization"

	minSigningKeyLength = 16
)

// Options is the Config implementation loaded once at startup
type Options struct {
	SigningKey    string        `yaml:"signing_key" json:"-"`
	SigningMethod string        `yaml:"signing_method" json:"signing_method"`
	TokenTTL      time.Duration `yaml:"token_ttl" json:"token_ttl"`
	Issuer        string        `yaml:"issuer" json:"issuer,omitempty"`
	ContextKey    string        `yaml:"context_key" json:"context_key"`
	TokenLookup   string        `yaml:"token_lookup" json:"token_lookup"`
	AuthScheme    string        `yaml:"auth_scheme" json:"auth_scheme"`
}

var _ Config = Options{}

// NewOptions returns Options with defaults for everything but the key
func NewOptions(signingKey string) Options {
	return Options{SigningKey: signingKey}.WithDefaults()
}

// WithDefaults fills blank fields with their default values
func (o Options) WithDefaults() Options {
	if o.SigningMethod == "" {
		o.SigningMethod = SigningMethodHS256
	}
	if o.TokenTTL == 0 {
		o.TokenTTL = DefaultTokenTTL
	}
	if o.ContextKey == "" {
		o.ContextKey = DefaultContextKey
	}
	if o.TokenLookup == "" {
		o.TokenLookup = DefaultTokenLookup
	}
	if o.AuthScheme == "" {
		o.AuthScheme = DefaultAuthScheme
	}
	return o
}

// Validate will validate the options
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.SigningKey, validation.Required, validation.Length(minSigningKeyLength, 0)),
		validation.Field(&o.SigningMethod, validation.Required, validation.In(SigningMethodHS256)),
		validation.Field(&o.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&o.AuthScheme, validation.Required),
		validation.Field(&o.TokenLookup, validation.Required),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid gateway configuration").
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

func (o Options) GetSigningKey() string      { return o.SigningKey }
func (o Options) GetSigningMethod() string   { return o.SigningMethod }
func (o Options) GetTokenTTL() time.Duration { return o.TokenTTL }
func (o Options) GetIssuer() string          { return o.Issuer }
func (o Options) GetContextKey() string      { return o.ContextKey }
func (o Options) GetTokenLookup() string     { return o.TokenLookup }
func (o Options) GetAuthScheme() string      { return o.AuthScheme }
