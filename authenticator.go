package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther implements the authentication flows: email/password sign up and
// sign in, email verification, and Firebase sign in. Successful password
// sign ins emit a user.logged.in event; the Session Coordinator turns those
// into login counter updates.
type Auther struct {
	store             AccountStore
	tokenService      TokenService
	externalValidator ExternalTokenValidator
	dispatcher        *Dispatcher
	notifier          Notifier
	frontendURL       string
	verificationTTL   time.Duration
	logger            Logger
	now               Clock
}

// NewAuthenticator returns a new Auther.
func NewAuthenticator(store AccountStore, dispatcher *Dispatcher, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:           store,
		tokenService:    tokenService,
		dispatcher:      dispatcher,
		notifier:        loggingNotifier{logger: defLogger{}},
		frontendURL:     cfg.GetFrontendURL(),
		verificationTTL: cfg.GetVerificationTokenTTL(),
		logger:          defLogger{},
		now:             time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNotifier sets the outbound email collaborator.
func (s *Auther) WithNotifier(notifier Notifier) *Auther {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

// WithExternalValidator sets the validator for provider-issued ID tokens.
func (s *Auther) WithExternalValidator(validator ExternalTokenValidator) *Auther {
	s.externalValidator = validator
	return s
}

// WithTokenService overrides the token service.
func (s *Auther) WithTokenService(tokenService TokenService) *Auther {
	if tokenService != nil {
		s.tokenService = tokenService
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther.
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// SignUpWithEmail registers a new account and sends the verification email.
// The account is persisted unverified; verification failures during email
// delivery are logged, never returned.
func (s *Auther) SignUpWithEmail(ctx context.Context, email, password string) (*Account, error) {
	if existing, err := s.store.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}

	account, err := CreateWithEmailAndPassword(email, password)
	if err != nil {
		return nil, err
	}

	account, err = s.store.Save(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account")
	}

	s.SendVerificationEmail(ctx, account)
	return account, nil
}

// SignIn verifies the credentials and returns a session token. Unknown
// emails and wrong passwords produce the same error so the endpoint cannot
// be used to probe which addresses are registered.
func (s *Auther) SignIn(ctx context.Context, email, password string) (string, error) {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	ok, err := VerifyPassword(account, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	s.dispatcher.Emit(ctx, UserLoggedInMessage{AccountID: account.ID.String()})

	return s.tokenService.Generate(account.ID.String())
}

// SendVerificationEmail mints a short-lived token and mails the
// verification link. Delivery failures are logged and swallowed; the caller
// of the credential engine never sees them.
func (s *Auther) SendVerificationEmail(ctx context.Context, account *Account) {
	if account.Email == "" {
		return
	}

	token, err := s.tokenService.GenerateWithTTL(account.ID.String(), s.verificationTTL)
	if err != nil {
		s.logger.Error("failed to mint verification token", "account_id", account.ID, "error", err)
		return
	}

	link := fmt.Sprintf("%s/sign-in?emailToken=%s", s.frontendURL, token)
	body := fmt.Sprintf(`<a href="%s">Verify Email</a>`, link)

	if err := s.notifier.Send(ctx, account.Email, "Please verify your email address", body); err != nil {
		s.logger.Error("failed to send verification email", "account_id", account.ID, "error", err)
	}
}

// VerifyEmail validates a verification token, flips the account's verified
// flag (monotonic, never reverts), and returns a fresh session token.
func (s *Auther) VerifyEmail(ctx context.Context, token string) (string, error) {
	accountID, err := s.tokenService.Validate(token)
	if err != nil {
		return "", err
	}

	account, err := s.findByID(ctx, accountID)
	if err != nil {
		return "", err
	}

	account.MarkEmailVerified()
	if _, err := s.store.Save(ctx, account); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist email verification")
	}

	return s.tokenService.Generate(account.ID.String())
}

// SignInWithFirebase validates the provider token and resolves it to an
// account: by provider uid first, then by linking an existing email account
// (the provider already verified the address), then by creating a new
// account.
func (s *Auther) SignInWithFirebase(ctx context.Context, idToken string) (string, error) {
	if s.externalValidator == nil {
		return "", goerrors.New("no external token validator configured", goerrors.CategoryInternal)
	}

	identity, err := s.externalValidator.Validate(ctx, idToken)
	if err != nil {
		return "", err
	}

	if account, err := s.store.FindByFirebaseUID(ctx, identity.UID); err == nil {
		return s.tokenService.Generate(account.ID.String())
	} else if !goerrors.IsNotFound(err) {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if identity.Email != "" {
		if account, err := s.store.FindByEmail(ctx, identity.Email); err == nil {
			account.FirebaseUID = identity.UID
			account.MarkEmailVerified()
			if _, err := s.store.Save(ctx, account); err != nil {
				return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to link firebase identity")
			}
			return s.tokenService.Generate(account.ID.String())
		} else if !goerrors.IsNotFound(err) {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
		}
	}

	account := &Account{
		FirebaseUID:   identity.UID,
		Name:          identity.DisplayName,
		Email:         identity.Email,
		EmailVerified: true,
		SignUpAt:      s.now(),
	}
	account, err = s.store.Save(ctx, account)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account")
	}

	return s.tokenService.Generate(account.ID.String())
}

// ResetPassword verifies the old password, applies the complexity policy to
// the new one, and persists the replacement hash in a single atomic column
// update so concurrent resets never interleave into a corrupt value.
func (s *Auther) ResetPassword(ctx context.Context, account *Account, oldPassword, newPassword string) error {
	if err := ResetPassword(account, oldPassword, newPassword); err != nil {
		return err
	}

	if err := s.store.UpdatePasswordHash(ctx, account.ID, account.PasswordHash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist password hash")
	}
	return nil
}

func (s *Auther) findByID(ctx context.Context, accountID string) (*Account, error) {
	id, err := parseAccountID(accountID)
	if err != nil {
		return nil, err
	}

	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}
	return account, nil
}
