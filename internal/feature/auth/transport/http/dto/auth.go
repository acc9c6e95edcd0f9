// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "time"

// RegisterReq は /register のリクエストボディです。
// パスワードの長さはユースケース側で検証します。
type RegisterReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginReq は /login のリクエストボディです。
// デバイスIDと強制ログアウト対象は device-id / force-logout ヘッダーで渡します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRes is returned on a successful login.
type LoginRes struct {
	Token          string       `json:"token"`
	RefreshToken   string       `json:"refreshToken"`
	Role           string       `json:"role"`
	ExpiresIn      int64        `json:"expiresIn"`
	DeviceID       string       `json:"deviceId"`
	ActiveSessions []SessionRes `json:"activeSessions"`
}

// MaxSessionsRes is the 403 body when the session cap is reached.
type MaxSessionsRes struct {
	Message        string       `json:"message"`
	Code           string       `json:"code"`
	ActiveSessions []SessionRes `json:"activeSessions"`
}

// AccountLockedRes is the 403 body while the account is locked.
type AccountLockedRes struct {
	Message     string    `json:"message"`
	Code        string    `json:"code"`
	LockedUntil time.Time `json:"lockedUntil"`
}

// RefreshReq は /refresh-token のリクエストボディです。
type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshRes represents the response for a successful token refresh.
type RefreshRes struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
