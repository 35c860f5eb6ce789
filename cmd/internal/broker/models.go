package broker

import "time"

type validateResponse struct {
	Username string `json:"username"`
	App      string `json:"app"`
}

type sessionInfo struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	IP        string    `json:"ip"`
	App       string    `json:"app"`
}

type sessionsResponse struct {
	Username string        `json:"username"`
	Sessions []sessionInfo `json:"sessions"`
}
