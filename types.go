package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth and session options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetVerificationTokenTTL() time.Duration
	GetSessionTTL() time.Duration
	GetSweepInterval() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetFrontendURL() string
	GetDayBoundaryUTC() bool
}

// AccountStore is the persistence capability consumed by the credential
// flows and the activity cache. Implementations must apply Save and the
// single column updates atomically per account record.
type AccountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
	UpdateLastSession(ctx context.Context, id uuid.UUID, at time.Time) error
	IncrementLoginCount(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// Notifier delivers outbound email. Failures are logged by callers, never
// escalated past the credential engine.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// TokenService issues and verifies self-signed session tokens.
type TokenService interface {
	Generate(accountID string) (string, error)
	GenerateWithTTL(accountID string, ttl time.Duration) (string, error)
	Validate(tokenString string) (string, error)
}

// ExternalIdentity is the subject a third-party identity provider vouches
// for after its token validated.
type ExternalIdentity struct {
	UID         string
	DisplayName string
	Email       string
}

// ExternalTokenValidator validates tokens issued by a third-party identity
// provider.
type ExternalTokenValidator interface {
	Validate(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// Clock lets tests control time.
type Clock func() time.Time

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
