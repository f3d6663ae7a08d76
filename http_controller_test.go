package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	repo     *fakeAccounts
	auther   *auth.Auther
	guard    *auth.HTTPAuth
	notifier *captureNotifier
	ctrl     *auth.Controller
}

func newControllerFixture(opts ...auth.ControllerOption) *controllerFixture {
	repo := newFakeAccounts()
	dispatcher := auth.NewDispatcher(nil)
	notifier := &captureNotifier{}

	auther := auth.NewAuthenticator(repo.memStore, dispatcher, newTestConfig()).
		WithNotifier(notifier)
	guard := auth.NewHTTPAuth(auther, dispatcher)
	ctrl := auth.NewController(auther, guard, repo, newTestConfig(), opts...)

	return &controllerFixture{
		repo:     repo,
		auther:   auther,
		guard:    guard,
		notifier: notifier,
		ctrl:     ctrl,
	}
}

func TestControllerSignUp(t *testing.T) {
	f := newControllerFixture()

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.SignUpRequest)
		payload.Email = "user@example.com"
		payload.Password = "Sup3rSecret&"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var body map[string]any
	ctx.On("JSON", http.StatusCreated, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, f.ctrl.SignUp(ctx))
	require.NotNil(t, body)

	stored, err := f.repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, stored, body["user"])

	token, ok := body["token"].(string)
	require.True(t, ok)
	subject, err := f.auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.String(), subject)
}

func TestControllerSignUpRejectsInvalidPayload(t *testing.T) {
	f := newControllerFixture()

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.SignUpRequest)
		payload.Email = "not-an-email"
		payload.Password = "Sup3rSecret&"
	}).Return(nil)
	ctx.On("JSON", http.StatusBadRequest, mock.Anything).Return(nil)

	require.NoError(t, f.ctrl.SignUp(ctx))
	ctx.AssertExpectations(t)

	_, err := f.repo.FindByEmail(context.Background(), "not-an-email")
	assert.Error(t, err, "rejected payloads must not create accounts")
}

func TestControllerSignIn(t *testing.T) {
	f := newControllerFixture()
	account, err := f.auther.SignUpWithEmail(context.Background(), "user@example.com", "Sup3rSecret&")
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.SignInRequest)
		payload.Email = "user@example.com"
		payload.Password = "Sup3rSecret&"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var body map[string]string
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, f.ctrl.SignIn(ctx))
	require.NotNil(t, body)

	subject, err := f.auther.TokenService().Validate(body["token"])
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), subject)
}

func TestControllerSignInWrongPassword(t *testing.T) {
	f := newControllerFixture()
	_, err := f.auther.SignUpWithEmail(context.Background(), "user@example.com", "Sup3rSecret&")
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.SignInRequest)
		payload.Email = "user@example.com"
		payload.Password = "Wr0ngSecret&"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var body map[string]any
	ctx.On("JSON", http.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, f.ctrl.SignIn(ctx))
	require.NotNil(t, body)
	assert.Equal(t, "INVALID_CREDENTIALS", body["text_code"])
}

func TestControllerVerifyEmail(t *testing.T) {
	f := newControllerFixture()
	_, err := f.auther.SignUpWithEmail(context.Background(), "user@example.com", "Sup3rSecret&")
	require.NoError(t, err)

	msg, ok := f.notifier.last()
	require.True(t, ok)
	emailToken := extractEmailToken(t, msg.Body)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.VerifyEmailRequest)
		payload.Token = emailToken
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var body map[string]string
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, f.ctrl.VerifyEmail(ctx))
	require.NotNil(t, body)
	assert.NotEmpty(t, body["token"])

	stored, err := f.repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
}

func TestControllerSendVerificationEmail(t *testing.T) {
	f := newControllerFixture()
	account := f.repo.add(&auth.Account{Email: "user@example.com"})

	ctx := router.NewMockContext()
	ctx.LocalsMock["account"] = account
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, map[string]string{"status": "sent"}).Return(nil)

	require.NoError(t, f.ctrl.SendVerificationEmail(ctx))
	ctx.AssertExpectations(t)

	msg, ok := f.notifier.last()
	require.True(t, ok)
	assert.Equal(t, "user@example.com", msg.Recipient)
}

func TestControllerProfile(t *testing.T) {
	f := newControllerFixture()
	account := f.repo.add(&auth.Account{Email: "user@example.com", Name: "User"})

	ctx := router.NewMockContext()
	ctx.LocalsMock["account"] = account
	ctx.On("JSON", router.StatusOK, account).Return(nil)

	require.NoError(t, f.ctrl.Profile(ctx))
	ctx.AssertExpectations(t)
}

func TestControllerProfileWithoutAccount(t *testing.T) {
	f := newControllerFixture()

	ctx := router.NewMockContext()
	ctx.On("JSON", http.StatusUnauthorized, mock.Anything).Return(nil)

	require.NoError(t, f.ctrl.Profile(ctx))
	ctx.AssertExpectations(t)
}

func TestControllerUpdateProfile(t *testing.T) {
	f := newControllerFixture()
	account := f.repo.add(&auth.Account{Email: "user@example.com", Name: "Old Name"})

	ctx := router.NewMockContext()
	ctx.LocalsMock["account"] = account
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.UpdateProfileRequest)
		payload.Name = "New Name"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Return(nil)

	require.NoError(t, f.ctrl.UpdateProfile(ctx))

	stored, err := f.repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", stored.Name)
}

func TestControllerResetPassword(t *testing.T) {
	f := newControllerFixture()
	account, err := f.auther.SignUpWithEmail(context.Background(), "user@example.com", "Sup3rSecret&")
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.LocalsMock["account"] = account
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.ResetPasswordRequest)
		payload.OldPassword = "Sup3rSecret&"
		payload.NewPassword = "N3wSecret&Pass"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, map[string]string{"status": "updated"}).Return(nil)

	require.NoError(t, f.ctrl.ResetPassword(ctx))
	ctx.AssertExpectations(t)

	_, err = f.auther.SignIn(context.Background(), "user@example.com", "N3wSecret&Pass")
	assert.NoError(t, err, "the new password should sign in")
}

func TestControllerDashboard(t *testing.T) {
	f := newControllerFixture()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.repo.dashboard = []auth.DashboardEntry{
		{ID: uuid.New(), SignUpAt: at, LoginCount: 3, LastSessionAt: &at},
	}

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var body map[string]any
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, f.ctrl.Dashboard(ctx))
	require.NotNil(t, body)
	assert.Equal(t, f.repo.dashboard, body["users"])
}

func TestControllerStatistics(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newControllerFixture(auth.WithControllerClock(func() time.Time { return now }))

	f.repo.stats = &auth.Statistics{TotalUsers: 10, ActiveToday: 2, AverageActive: 1.29}

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, f.repo.stats).Return(nil)

	require.NoError(t, f.ctrl.Statistics(ctx))
	ctx.AssertExpectations(t)

	// the repository sees the controller clock and the configured boundary
	assert.Equal(t, now, f.repo.statsAt)
	assert.True(t, f.repo.statsUTC)
}
