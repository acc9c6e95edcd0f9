package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/securetoken"
)

// TokenCodec issues signed bearer tokens.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/jwt).
type TokenCodec interface {
	// Issue signs a bearer token for userID valid for ttl.
	Issue(userID string, ttl time.Duration) (token string, expiresAt time.Time, err error)
}

// PasswordHasher hashes and compares passwords with an adaptive hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil on a match. An empty hash must still cost a full
	// comparison so unknown accounts are not distinguishable by timing.
	Compare(hash, password string) error
}

// Mailer delivers a rendered HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Renderer turns a named template and its variables into HTML.
type Renderer interface {
	Render(name string, vars any) (string, error)
}

// Deps are the collaborators of the auth usecases.
type Deps struct {
	Users    UserRepository
	Ledger   *RevocationLedger
	Codec    TokenCodec
	Hasher   PasswordHasher
	Mailer   Mailer   // optional; nil disables notifications
	Renderer Renderer // required when Mailer is set
	Metrics  Metrics  // optional
	Logger   *slog.Logger
}

// Caller identifies the authenticated request that triggers an operation.
type Caller struct {
	UserID         string
	DeviceID       string
	Token          string
	TokenExpiresAt time.Time
}

// LoginInput is a password login attempt from one device.
type LoginInput struct {
	Email               string
	Password            string
	DeviceID            string // generated when empty
	UserAgent           string
	ForceLogoutDeviceID string
}

// TokenPair is a bearer token plus a new rotation token.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

// LoginResult is returned on admission.
type LoginResult struct {
	TokenPair
	UserID    string
	Role      string
	DeviceID  string
	Refreshed bool
	Evicted   *entity.Session
	Sessions  []entity.Session
}

// authUsecase implements the authentication, session and account flows.
type authUsecase struct {
	cfg         Config
	users       UserRepository
	ledger      *RevocationLedger
	registry    *SessionRegistry
	credentials *CredentialLifecycle
	policy      SessionPolicy
	lockout     LockoutPolicy
	codec       TokenCodec
	hasher      PasswordHasher
	mailer      Mailer
	renderer    Renderer
	metrics     Metrics
	logger      *slog.Logger
	now         func() time.Time

	// mail tracks in-flight notification goroutines.
	mail        sync.WaitGroup
	mailTimeout time.Duration
}

// NewAuthUsecase creates the auth usecases from cfg and deps.
func NewAuthUsecase(cfg Config, deps Deps) *authUsecase {
	cfg = cfg.withDefaults()
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ledger := deps.Ledger
	if ledger == nil {
		panic("usecase: Deps.Ledger is required")
	}

	return &authUsecase{
		cfg:         cfg,
		users:       deps.Users,
		ledger:      ledger,
		registry:    NewSessionRegistry(deps.Users, cfg.SessionTTL, metrics),
		credentials: NewCredentialLifecycle(deps.Users, cfg.ResetTokenTTL),
		policy:      SessionPolicy{MaxSessions: cfg.MaxSessions, TTL: cfg.SessionTTL},
		lockout:     LockoutPolicy{MaxAttempts: cfg.MaxFailedAttempts, LockDuration: cfg.LockDuration},
		codec:       deps.Codec,
		hasher:      deps.Hasher,
		mailer:      deps.Mailer,
		renderer:    deps.Renderer,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
		mailTimeout: 15 * time.Second,
	}
}

// setClock replaces the clock of the usecase and its components.
func (u *authUsecase) setClock(now func() time.Time) {
	u.now = now
	u.registry.now = now
	u.credentials.now = now
	u.ledger.now = now
}

const maxPasswordBytes = 72

// validatePassword checks the password against the minimum requirements.
func (u *authUsecase) validatePassword(password string) error {
	if len(password) < u.cfg.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, u.cfg.MinPasswordLength)
	}
	// bcrypt の入力上限
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes long", ErrWeakPassword, maxPasswordBytes)
	}
	return nil
}

// Register creates an unverified account and emails a verification link.
func (u *authUsecase) Register(ctx context.Context, email, password string) error {
	email = entity.NormalizeEmail(email)
	if err := u.validatePassword(password); err != nil {
		return err
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := u.now()
	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	token, err := u.credentials.IssueVerificationToken(user)
	if err != nil {
		return err
	}
	if err := u.users.Create(ctx, user); err != nil {
		return err
	}

	u.notify(ctx, user.Email, "Email Verification", "verify_email", map[string]any{
		"Link": u.cfg.PublicBaseURL + "/api/auth/verify-email/" + token,
	})
	u.logger.Info("user registered", "user_id", user.ID)
	return nil
}

// Login authenticates a password and admits the device under the session
// policy. On admission it returns a bearer token, a new rotation token and
// the session snapshot; the rotation slot, the lockout reset and the session
// change are written in one atomic update.
func (u *authUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := entity.NormalizeEmail(in.Email)
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = u.hasher.Compare("", in.Password)
		u.metrics.LoginOutcome(OutcomeInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.IsLocked(u.now()) {
		u.metrics.LoginOutcome(OutcomeLocked)
		return nil, &AccountLockedError{Until: *user.LockedUntil}
	}

	if err := u.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return nil, u.registerFailedLogin(ctx, user.ID)
	}

	if u.cfg.RequireVerifiedEmail && !user.IsVerified {
		u.metrics.LoginOutcome(OutcomeNotVerified)
		return nil, ErrEmailNotVerified
	}

	deviceID := in.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	refreshPlain, refreshHash, err := securetoken.Issue()
	if err != nil {
		return nil, err
	}
	access, accessExp, err := u.codec.Issue(user.ID, u.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	var decision Decision
	updated, err := u.users.Update(ctx, user.ID, func(rec *entity.User) error {
		now := u.now()
		if err := u.lockout.Check(rec, now); err != nil {
			return err
		}
		d, err := u.policy.Admit(rec, AdmitRequest{
			DeviceID:            deviceID,
			UserAgent:           in.UserAgent,
			ForceLogoutDeviceID: in.ForceLogoutDeviceID,
		}, now)
		if err != nil {
			return err
		}
		decision = d
		rec.RefreshTokenHash = &refreshHash
		u.lockout.Reset(rec)
		return nil
	})
	if err != nil {
		var maxErr *MaxSessionsError
		var lockErr *AccountLockedError
		switch {
		case errors.As(err, &maxErr):
			u.metrics.LoginOutcome(OutcomeMaxSessions)
		case errors.As(err, &lockErr):
			u.metrics.LoginOutcome(OutcomeLocked)
		}
		return nil, err
	}

	switch {
	case decision.Evicted != nil:
		u.metrics.LoginOutcome(OutcomeForcedEviction)
		u.logger.Info("session force-evicted on login", "user_id", updated.ID, "evicted_device_id", decision.Evicted.DeviceID, "device_id", deviceID)
	case decision.Refreshed:
		u.metrics.LoginOutcome(OutcomeRefreshed)
	default:
		u.metrics.LoginOutcome(OutcomeAdmitted)
	}
	u.metrics.SessionsPruned(len(decision.Pruned))

	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:     access,
			AccessExpiresAt: accessExp,
			RefreshToken:    refreshPlain,
		},
		UserID:    updated.ID,
		Role:      updated.Role,
		DeviceID:  deviceID,
		Refreshed: decision.Refreshed,
		Evicted:   decision.Evicted,
		Sessions:  decision.Sessions,
	}, nil
}

// registerFailedLogin counts a wrong password and returns the error for the
// caller: ErrInvalidCredentials, or the lock error when another request
// locked the account in the meantime.
func (u *authUsecase) registerFailedLogin(ctx context.Context, userID string) error {
	locked := false
	_, err := u.users.Update(ctx, userID, func(rec *entity.User) error {
		now := u.now()
		if err := u.lockout.Check(rec, now); err != nil {
			return err
		}
		locked = u.lockout.RegisterFailure(rec, now)
		return nil
	})
	var lockErr *AccountLockedError
	if errors.As(err, &lockErr) {
		u.metrics.LoginOutcome(OutcomeLocked)
		return err
	}
	if err != nil {
		return err
	}
	if locked {
		u.logger.Warn("account locked after repeated failures", "user_id", userID)
	}
	u.metrics.LoginOutcome(OutcomeInvalidCredentials)
	return ErrInvalidCredentials
}

// Refresh exchanges the current rotation token for a new bearer token and a
// new rotation token. The old rotation token stops working in the same write;
// of two concurrent refreshes with one token, only one succeeds.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := securetoken.HashForLookup(refreshToken)
	user, err := u.users.FindByHash(ctx, entity.HashFieldRefresh, hash)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	nextPlain, nextHash, err := securetoken.Issue()
	if err != nil {
		return nil, err
	}
	_, err = u.users.Update(ctx, user.ID, func(rec *entity.User) error {
		if rec.RefreshTokenHash == nil || *rec.RefreshTokenHash != hash {
			return ErrInvalidRefreshToken
		}
		rec.RefreshTokenHash = &nextHash
		return nil
	})
	if err != nil {
		return nil, err
	}

	access, accessExp, err := u.codec.Issue(user.ID, u.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenPair{AccessToken: access, AccessExpiresAt: accessExp, RefreshToken: nextPlain}, nil
}

// AccessTokenTTL returns the configured bearer token lifetime.
func (u *authUsecase) AccessTokenTTL() time.Duration { return u.cfg.AccessTokenTTL }
