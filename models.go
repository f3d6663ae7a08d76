package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the single tagged account model. Password-based and Firebase
// accounts share it; the optional columns tell them apart.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,unique,nullzero" json:"email,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	FirebaseUID   string     `bun:"firebase_uid,unique,nullzero" json:"firebase_uid,omitempty"`
	EmailVerified bool       `bun:"email_verified,notnull,default:false" json:"email_verified"`
	LoginCount    int        `bun:"login_count,notnull,default:0" json:"login_count"`
	SignUpAt      time.Time  `bun:"sign_up_at,nullzero,notnull,default:current_timestamp" json:"sign_up_at"`
	LastSessionAt *time.Time `bun:"last_session_at,nullzero" json:"last_session_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasCredentials reports whether the account satisfies the invariant of
// carrying at least one of a password hash or an external identity.
func (a *Account) HasCredentials() bool {
	return a.PasswordHash != "" || a.FirebaseUID != ""
}

// MarkEmailVerified flips the verification flag. The flag is monotonic:
// once verified an account never reverts.
func (a *Account) MarkEmailVerified() {
	a.EmailVerified = true
}

// Statistics summarizes sign up and session activity across accounts.
type Statistics struct {
	TotalUsers    int     `json:"totalUsers"`
	ActiveToday   int     `json:"activeToday"`
	AverageActive float64 `json:"averageActive"`
}

// DashboardEntry is the per-account row served by the dashboard listing.
type DashboardEntry struct {
	ID            uuid.UUID  `json:"id"`
	SignUpAt      time.Time  `json:"signUpAt"`
	LoginCount    int        `json:"loginCount"`
	LastSessionAt *time.Time `json:"lastSessionAt,omitempty"`
}
