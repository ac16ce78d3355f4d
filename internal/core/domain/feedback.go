package domain

import "time"

// NotificationLevel distinguishes success toasts from error toasts.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient user facing message.
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Route is a navigation target in the UI.
type Route string

const (
	RouteLogin    Route = "/login"
	RouteExchange Route = "/exchange"
	RouteHistory  Route = "/history"
)
