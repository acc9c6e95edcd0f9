package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

func newSessionRouter(uc *mockSessionUsecase) *gin.Engine {
	h := NewSessionHandler(uc)
	r := gin.New()
	r.GET("/sessions", fakeAuth, SessionRequired(uc), h.List)
	r.DELETE("/sessions/:deviceId", fakeAuth, h.Delete)
	r.POST("/logout", fakeAuth, SessionRequired(uc), h.Logout)
	r.POST("/logout-all", fakeAuth, h.LogoutAll)
	return r
}

func TestSessionHandler_List(t *testing.T) {
	t.Parallel()

	uc := &mockSessionUsecase{SessionsFunc: func(_ context.Context, userID string) ([]entity.Session, error) {
		assert.Equal(t, "user-1", userID)
		return sessionsFixture(), nil
	}}

	w := serve(t, newSessionRouter(uc), request{
		method: http.MethodGet, path: "/sessions", headers: map[string]string{"device-id": "d1"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "d1", body["currentDeviceId"])
	assert.Equal(t, float64(2), body["totalActiveSessions"])
	sessions := body["sessions"].([]any)
	require.Len(t, sessions, 2)
	assert.Equal(t, true, sessions[0].(map[string]any)["isCurrentDevice"])
	assert.Equal(t, false, sessions[1].(map[string]any)["isCurrentDevice"])
}

func TestSessionHandler_List_Empty(t *testing.T) {
	t.Parallel()

	w := serve(t, newSessionRouter(&mockSessionUsecase{}), request{
		method: http.MethodGet, path: "/sessions", headers: map[string]string{"device-id": "d1"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":[],"currentDeviceId":"d1","totalActiveSessions":0}`, w.Body.String())
}

func TestSessionHandler_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		deviceHeader   string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "other device", deviceHeader: "d2", expectedStatus: http.StatusOK},
		{name: "without device header", expectedStatus: http.StatusOK},
		{name: "unknown device", err: usecase.ErrSessionNotFound, expectedStatus: http.StatusNotFound, expectedCode: CodeSessionNotFound},
		{name: "expired session", err: usecase.ErrSessionExpired, expectedStatus: http.StatusBadRequest, expectedCode: CodeSessionExpired},
		{name: "store failure", err: errBoom, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotCaller usecase.Caller
			var gotDevice string
			uc := &mockSessionUsecase{DeleteSessionFunc: func(_ context.Context, caller usecase.Caller, deviceID string) (int, error) {
				gotCaller, gotDevice = caller, deviceID
				if tt.err != nil {
					return 0, tt.err
				}
				return 1, nil
			}}
			headers := map[string]string{}
			if tt.deviceHeader != "" {
				headers["device-id"] = tt.deviceHeader
			}

			w := serve(t, newSessionRouter(uc), request{method: http.MethodDelete, path: "/sessions/d1", headers: headers})

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "d1", gotDevice)
			assert.Equal(t, usecase.Caller{
				UserID:         "user-1",
				DeviceID:       tt.deviceHeader,
				Token:          "access-token",
				TokenExpiresAt: testTokenExp,
			}, gotCaller)

			body := decode(t, w)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(1), body["remainingSessions"])
				return
			}
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["code"])
			}
		})
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	t.Parallel()

	var got usecase.Caller
	uc := &mockSessionUsecase{LogoutFunc: func(_ context.Context, caller usecase.Caller) (int, error) {
		got = caller
		return 3, nil
	}}

	w := serve(t, newSessionRouter(uc), request{
		method: http.MethodPost, path: "/logout", headers: map[string]string{"device-id": "d4"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d4", got.DeviceID)
	assert.Equal(t, "access-token", got.Token)
	assert.Equal(t, float64(3), decode(t, w)["remainingSessions"])
}

func TestSessionHandler_LogoutAll(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		called := false
		uc := &mockSessionUsecase{LogoutAllFunc: func(_ context.Context, caller usecase.Caller) error {
			called = true
			assert.Equal(t, "user-1", caller.UserID)
			return nil
		}}

		w := serve(t, newSessionRouter(uc), request{method: http.MethodPost, path: "/logout-all"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("revocation store down", func(t *testing.T) {
		t.Parallel()

		uc := &mockSessionUsecase{LogoutAllFunc: func(context.Context, usecase.Caller) error { return errBoom }}

		w := serve(t, newSessionRouter(uc), request{method: http.MethodPost, path: "/logout-all"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
