package dto

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/dashboard"
)

type DashboardResponse struct {
	Data      dashboard.Data         `json:"data"`
	Loading   dashboard.LoadingState `json:"loading"`
	FromCache bool                   `json:"from_cache"`
}

type DashboardLoadingResponse struct {
	Loading dashboard.LoadingState `json:"loading"`
}

// DashboardStreamMessage is the envelope pushed over the dashboard
// websocket whenever a snapshot or a notification arrives.
type DashboardStreamMessage struct {
	Type         string                  `json:"type"` // "snapshot" or "notification"
	Data         *dashboard.Data         `json:"data,omitempty"`
	Loading      *dashboard.LoadingState `json:"loading,omitempty"`
	Notification interface{}             `json:"notification,omitempty"`
}
