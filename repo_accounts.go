package auth

import (
	"context"
	"math"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the account repository. It exposes the generic CRUD surface
// plus the single-column updates the session coordinator relies on; those
// updates are atomic per account record.
type Accounts interface {
	repository.Repository[*Account]

	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)

	UpdateLastSession(ctx context.Context, id uuid.UUID, at time.Time) error
	IncrementLoginCount(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	Dashboard(ctx context.Context) ([]DashboardEntry, error)
	Statistics(ctx context.Context, now time.Time, dayBoundaryUTC bool) (*Statistics, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts     = (*accounts)(nil)
	_ AccountStore = (*accounts)(nil)
)

// NewAccountsRepository creates the bun-backed account repository.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.findOne(ctx, "id = ?", id)
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, "email = ?", email)
}

func (a *accounts) FindByFirebaseUID(ctx context.Context, uid string) (*Account, error) {
	return a.findOne(ctx, "firebase_uid = ?", uid)
}

func (a *accounts) findOne(ctx context.Context, clause string, arg any) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+clause, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

// Save inserts new accounts and updates existing ones in a single statement.
func (a *accounts) Save(ctx context.Context, account *Account) (*Account, error) {
	if account.ID == uuid.Nil {
		return a.Create(ctx, account)
	}
	return a.Update(ctx, account)
}

func (a *accounts) UpdateLastSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set("last_session_at = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (a *accounts) IncrementLoginCount(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set("login_count = login_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (a *accounts) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Dashboard lists every account with its sign-up and session information.
func (a *accounts) Dashboard(ctx context.Context) ([]DashboardEntry, error) {
	var records []Account
	if err := a.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, err
	}

	entries := make([]DashboardEntry, len(records))
	for i, record := range records {
		entries[i] = DashboardEntry{
			ID:            record.ID,
			SignUpAt:      record.SignUpAt,
			LoginCount:    record.LoginCount,
			LastSessionAt: record.LastSessionAt,
		}
	}
	return entries, nil
}

// Statistics reports totals plus activity counts relative to the given
// instant. The day boundary is computed in UTC or server-local time per the
// configuration flag.
func (a *accounts) Statistics(ctx context.Context, now time.Time, dayBoundaryUTC bool) (*Statistics, error) {
	total, err := a.db.NewSelect().Model((*Account)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}

	today := DayStart(now, dayBoundaryUTC)

	activeToday, err := a.db.NewSelect().
		Model((*Account)(nil)).
		Where("last_session_at >= ?", today).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	activeLastSevenDays, err := a.db.NewSelect().
		Model((*Account)(nil)).
		Where("last_session_at >= ?", today.AddDate(0, 0, -7)).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		TotalUsers:    total,
		ActiveToday:   activeToday,
		AverageActive: math.Round(float64(activeLastSevenDays)/7*100) / 100,
	}, nil
}

// DayStart truncates the instant to its day boundary, in UTC or the
// instant's local zone.
func DayStart(t time.Time, utc bool) time.Time {
	if utc {
		t = t.UTC()
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
