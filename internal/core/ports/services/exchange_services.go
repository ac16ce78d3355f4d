package services

import (
	"context"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
)

// Feedback receives the user facing outcome of a submission.
type Feedback interface {
	Notify(level domain.NotificationLevel, message string)
	Navigate(route domain.Route)
}

// ExchangeSvcFacade runs the order submission workflow
type ExchangeSvcFacade interface {
	// Submit re-fetches the rates, resolves the current rate id and places the order.
	Submit(ctx context.Context, req domain.SubmitRequest, fb Feedback) domain.SubmissionResult
	// PlaceOrder dispatches an order whose rate id is already known and reconciles caches.
	PlaceOrder(ctx context.Context, req domain.OrderRequest, fb Feedback) domain.SubmissionResult
	// ListSubmissions returns the member's recent attempts from the journal.
	ListSubmissions(ctx context.Context, limit int) ([]domain.SubmissionRecord, error)
}

// AnalyticsSvc records product events. Implementations must not block.
type AnalyticsSvc interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}
