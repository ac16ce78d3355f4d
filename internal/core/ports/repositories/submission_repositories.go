package repositories

import (
	"context"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
)

// SubmissionReader defines read operations for the submission journal
type SubmissionReader interface {
	// ListSubmissions retrieves the member's most recent attempts, newest first.
	ListSubmissions(ctx context.Context, memberID string, limit int) ([]domain.SubmissionRecord, error)
}

// SubmissionWriter defines write operations for the submission journal
type SubmissionWriter interface {
	SaveSubmission(ctx context.Context, record domain.SubmissionRecord) error
}

// SubmissionRepositoryFacade combines all submission journal interfaces
type SubmissionRepositoryFacade interface {
	SubmissionReader
	SubmissionWriter
}
