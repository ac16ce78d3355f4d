package services

import (
	"sync"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/jonboulle/clockwork"
)

// FeedbackRecorder collects notifications and the pending navigation until drained.
type FeedbackRecorder struct {
	mu            sync.Mutex
	clock         clockwork.Clock
	notifications []domain.Notification
	navigate      domain.Route
}

var _ portssvc.Feedback = (*FeedbackRecorder)(nil)

// NewFeedbackRecorder creates an empty recorder. A nil clock uses real time.
func NewFeedbackRecorder(clock clockwork.Clock) *FeedbackRecorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FeedbackRecorder{clock: clock}
}

func (r *FeedbackRecorder) Notify(level domain.NotificationLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, domain.Notification{
		Level:     level,
		Message:   message,
		CreatedAt: r.clock.Now(),
	})
}

func (r *FeedbackRecorder) Navigate(route domain.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigate = route
}

// Drain returns and clears everything recorded so far.
func (r *FeedbackRecorder) Drain() ([]domain.Notification, domain.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	notifications, route := r.notifications, r.navigate
	r.notifications, r.navigate = nil, ""
	return notifications, route
}
