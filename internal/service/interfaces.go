package service

import (
	"context"

	"activity-board/internal/domain"
)

// ActivitiesAPI defines the calls made to the remote activities API
type ActivitiesAPI interface {
	// ListActivities fetches the full catalog
	ListActivities(ctx context.Context) (domain.Catalog, error)

	// Signup registers email for activity and returns the server's message
	Signup(ctx context.Context, activity, email string) (string, error)

	// Unregister removes email from activity and returns the server's message
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// MessageService keeps at most one transient status message per browser session
type MessageService interface {
	// Show replaces the session's current message and starts its expiry
	Show(ctx context.Context, sessionID, text string, kind domain.MessageKind) (domain.StatusMessage, error)

	// Current returns the visible message, or nil once it expired or was never set
	Current(ctx context.Context, sessionID string) (*domain.StatusMessage, error)
}

// Services aggregates all service interfaces
type Services struct {
	Activities ActivitiesAPI
	Messages   MessageService
}
