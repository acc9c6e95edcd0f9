package dto

import "time"

// SessionRes is one device session as shown to its owner.
type SessionRes struct {
	DeviceID        string    `json:"deviceId"`
	UserAgent       string    `json:"userAgent"`
	LastActive      time.Time `json:"lastActive"`
	IsCurrentDevice bool      `json:"isCurrentDevice"`
}

// SessionsRes は GET /sessions のレスポンスです。
type SessionsRes struct {
	Sessions            []SessionRes `json:"sessions"`
	CurrentDeviceID     string       `json:"currentDeviceId"`
	TotalActiveSessions int          `json:"totalActiveSessions"`
}

// RemainingSessionsRes is returned by logout and session deletion.
type RemainingSessionsRes struct {
	Message           string `json:"message"`
	RemainingSessions int    `json:"remainingSessions"`
}
