package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var (
	testNow      = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	testTokenExp = testNow.Add(time.Hour)
	errBoom      = errors.New("db down")
)

// mockAuthUsecase is a mock implementation of AuthUsecase.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, email, password string) error
	LoginFunc    func(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (*usecase.TokenPair, error)
}

func (m *mockAuthUsecase) Register(ctx context.Context, email, password string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, usecase.ErrInvalidRefreshToken
}

func (m *mockAuthUsecase) AccessTokenTTL() time.Duration { return time.Hour }

// mockSessionUsecase is a mock implementation of SessionUsecase and SessionConfirmer.
type mockSessionUsecase struct {
	SessionsFunc      func(ctx context.Context, userID string) ([]entity.Session, error)
	DeleteSessionFunc func(ctx context.Context, caller usecase.Caller, deviceID string) (int, error)
	LogoutFunc        func(ctx context.Context, caller usecase.Caller) (int, error)
	LogoutAllFunc     func(ctx context.Context, caller usecase.Caller) error
	ConfirmFunc       func(ctx context.Context, userID, deviceID, userAgent string) error
}

func (m *mockSessionUsecase) Sessions(ctx context.Context, userID string) ([]entity.Session, error) {
	if m.SessionsFunc != nil {
		return m.SessionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionUsecase) DeleteSession(ctx context.Context, caller usecase.Caller, deviceID string) (int, error) {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, caller, deviceID)
	}
	return 0, nil
}

func (m *mockSessionUsecase) Logout(ctx context.Context, caller usecase.Caller) (int, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, caller)
	}
	return 0, nil
}

func (m *mockSessionUsecase) LogoutAll(ctx context.Context, caller usecase.Caller) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, caller)
	}
	return nil
}

func (m *mockSessionUsecase) ConfirmSession(ctx context.Context, userID, deviceID, userAgent string) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, userID, deviceID, userAgent)
	}
	return nil
}

// mockAccountUsecase is a mock implementation of AccountUsecase and UserLookup.
type mockAccountUsecase struct {
	VerifyEmailFunc        func(ctx context.Context, token string) error
	ResendVerificationFunc func(ctx context.Context, email string) error
	ForgotPasswordFunc     func(ctx context.Context, email string) error
	ResetPasswordFunc      func(ctx context.Context, token, newPassword string) error
	ChangePasswordFunc     func(ctx context.Context, caller usecase.Caller, current, next string) error
	DeleteAccountFunc      func(ctx context.Context, caller usecase.Caller) error
	ProfileFunc            func(ctx context.Context, userID string) (*entity.User, error)
}

func (m *mockAccountUsecase) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

func (m *mockAccountUsecase) ResendVerification(ctx context.Context, email string) error {
	if m.ResendVerificationFunc != nil {
		return m.ResendVerificationFunc(ctx, email)
	}
	return nil
}

func (m *mockAccountUsecase) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *mockAccountUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *mockAccountUsecase) ChangePassword(ctx context.Context, caller usecase.Caller, current, next string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, caller, current, next)
	}
	return nil
}

func (m *mockAccountUsecase) DeleteAccount(ctx context.Context, caller usecase.Caller) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, caller)
	}
	return nil
}

func (m *mockAccountUsecase) Profile(ctx context.Context, userID string) (*entity.User, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return nil, usecase.ErrUserNotFound
}

// fakeAuth stands in for jwtmw.AuthRequired and authenticates every request as user-1.
func fakeAuth(c *gin.Context) {
	c.Set(jwtmw.ContextUserID, "user-1")
	c.Set(jwtmw.ContextToken, "access-token")
	c.Set(jwtmw.ContextTokenExpiresAt, testTokenExp)
	c.Next()
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

func serve(t *testing.T, r *gin.Engine, req request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(req.body))
	}
	httpReq := httptest.NewRequest(req.method, req.path, &buf)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func sessionsFixture() []entity.Session {
	return []entity.Session{
		{DeviceID: "d1", LastActiveAt: testNow.Add(-time.Hour), UserAgent: "Firefox"},
		{DeviceID: "d2", LastActiveAt: testNow, UserAgent: "Safari"},
	}
}
