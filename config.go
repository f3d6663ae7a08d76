package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig loads auth and session options from the environment. It
// satisfies the Config interface consumed by the token service, the
// authenticator, and the session coordinator.
type EnvConfig struct {
	SigningKey           string        `env:"AUTH_SIGNING_KEY"`
	TokenExpiration      int           `env:"AUTH_TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	VerificationTokenTTL time.Duration `env:"AUTH_VERIFICATION_TOKEN_TTL" envDefault:"15m"`
	SessionTTL           time.Duration `env:"AUTH_SESSION_TTL"            envDefault:"10m"`
	SweepInterval        time.Duration `env:"AUTH_SWEEP_INTERVAL"         envDefault:"10m"`
	Issuer               string        `env:"AUTH_ISSUER"`
	Audience             []string      `env:"AUTH_AUDIENCE"               envSeparator:","`
	FrontendURL          string        `env:"AUTH_FRONTEND_URL"           envDefault:"http://localhost:3000"`
	DayBoundaryUTC       bool          `env:"AUTH_DAY_BOUNDARY_UTC"       envDefault:"true"`

	DatabaseDSN string `env:"AUTH_DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	HTTPAddress string `env:"AUTH_HTTP_ADDRESS" envDefault:":9876"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig parses the environment into an EnvConfig.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY is required", errors.CategoryOperation)
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *EnvConfig) GetVerificationTokenTTL() time.Duration {
	return c.VerificationTokenTTL
}

func (c *EnvConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

func (c *EnvConfig) GetSweepInterval() time.Duration {
	return c.SweepInterval
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	return c.Audience
}

func (c *EnvConfig) GetFrontendURL() string {
	return c.FrontendURL
}

func (c *EnvConfig) GetDayBoundaryUTC() bool {
	return c.DayBoundaryUTC
}
