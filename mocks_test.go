package auth_test

import (
	"context"
	"sync"
	"time"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// testConfig is a plain Config implementation for tests.
type testConfig struct {
	signingKey      string
	tokenExpiration int
	verificationTTL time.Duration
	sessionTTL      time.Duration
	sweepInterval   time.Duration
	issuer          string
	audience        []string
	frontendURL     string
	dayBoundaryUTC  bool
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 24,
		verificationTTL: 15 * time.Minute,
		sessionTTL:      10 * time.Minute,
		sweepInterval:   10 * time.Minute,
		issuer:          "test-issuer",
		audience:        []string{"test:audience"},
		frontendURL:     "https://app.example.com",
		dayBoundaryUTC:  true,
	}
}

func (c *testConfig) GetSigningKey() string                 { return c.signingKey }
func (c *testConfig) GetTokenExpiration() int               { return c.tokenExpiration }
func (c *testConfig) GetVerificationTokenTTL() time.Duration { return c.verificationTTL }
func (c *testConfig) GetSessionTTL() time.Duration          { return c.sessionTTL }
func (c *testConfig) GetSweepInterval() time.Duration       { return c.sweepInterval }
func (c *testConfig) GetIssuer() string                     { return c.issuer }
func (c *testConfig) GetAudience() []string                 { return c.audience }
func (c *testConfig) GetFrontendURL() string                { return c.frontendURL }
func (c *testConfig) GetDayBoundaryUTC() bool               { return c.dayBoundaryUTC }

// memStore is an in-memory AccountStore recording every session write so
// tests can assert how many persistence round trips happened.
type memStore struct {
	mu            sync.Mutex
	accounts      map[uuid.UUID]*auth.Account
	sessionWrites map[uuid.UUID][]time.Time
	failSessions  bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:      map[uuid.UUID]*auth.Account{},
		sessionWrites: map[uuid.UUID][]time.Time{},
	}
}

func (s *memStore) add(account *auth.Account) *auth.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	s.accounts[account.ID] = account
	return account
}

func (s *memStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		return account, nil
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memStore) FindByFirebaseUID(ctx context.Context, uid string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.FirebaseUID == uid {
			return account, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memStore) Save(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	return s.add(account), nil
}

func (s *memStore) UpdateLastSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSessions {
		return context.DeadlineExceeded
	}
	s.sessionWrites[id] = append(s.sessionWrites[id], at)
	if account, ok := s.accounts[id]; ok {
		ts := at
		account.LastSessionAt = &ts
	}
	return nil
}

func (s *memStore) IncrementLoginCount(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		account.LoginCount++
	}
	return nil
}

func (s *memStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		account.PasswordHash = hash
	}
	return nil
}

func (s *memStore) writesFor(id uuid.UUID) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.sessionWrites[id]...)
}

func (s *memStore) loginCount(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		return account.LoginCount
	}
	return 0
}

// fakeAccounts widens memStore to the full Accounts interface for the HTTP
// controller tests. The embedded generic repository is never exercised, so
// it stays nil.
type fakeAccounts struct {
	repository.Repository[*auth.Account]
	*memStore

	dashboard []auth.DashboardEntry
	stats     *auth.Statistics
	statsAt   time.Time
	statsUTC  bool
}

var _ auth.Accounts = (*fakeAccounts)(nil)

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{memStore: newMemStore()}
}

func (f *fakeAccounts) Dashboard(ctx context.Context) ([]auth.DashboardEntry, error) {
	return f.dashboard, nil
}

func (f *fakeAccounts) Statistics(ctx context.Context, now time.Time, dayBoundaryUTC bool) (*auth.Statistics, error) {
	f.statsAt = now
	f.statsUTC = dayBoundaryUTC
	return f.stats, nil
}

// captureNotifier records outbound messages.
type captureNotifier struct {
	mu       sync.Mutex
	messages []capturedMessage
}

type capturedMessage struct {
	Recipient string
	Subject   string
	Body      string
}

func (n *captureNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, capturedMessage{recipient, subject, htmlBody})
	return nil
}

func (n *captureNotifier) last() (capturedMessage, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return capturedMessage{}, false
	}
	return n.messages[len(n.messages)-1], true
}

// staticValidator returns a fixed identity for any token.
type staticValidator struct {
	identity *auth.ExternalIdentity
	err      error
}

func (v staticValidator) Validate(ctx context.Context, idToken string) (*auth.ExternalIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}
