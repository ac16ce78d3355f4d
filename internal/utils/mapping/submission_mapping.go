package mapping

import (
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/models"
)

// ToModelSubmission converts a domain SubmissionRecord to a model ExchangeSubmission
func ToModelSubmission(d domain.SubmissionRecord) models.ExchangeSubmission {
	return models.ExchangeSubmission{
		SubmissionID:   d.SubmissionID,
		MemberID:       d.MemberID,
		RateID:         int64(d.RateID),
		SourceCurrency: string(d.SourceCurrency),
		TargetCurrency: string(d.TargetCurrency),
		Amount:         d.Amount,
		Status:         string(d.Status),
		ErrorKind:      d.ErrorKind,
		Message:        d.Message,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainSubmission converts a model ExchangeSubmission to a domain SubmissionRecord
func ToDomainSubmission(m models.ExchangeSubmission) domain.SubmissionRecord {
	return domain.SubmissionRecord{
		SubmissionID:   m.SubmissionID,
		MemberID:       m.MemberID,
		RateID:         domain.RateID(m.RateID),
		SourceCurrency: domain.Currency(m.SourceCurrency),
		TargetCurrency: domain.Currency(m.TargetCurrency),
		Amount:         m.Amount,
		Status:         domain.SubmissionStatus(m.Status),
		ErrorKind:      m.ErrorKind,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainSubmissions converts a slice of model rows.
func ToDomainSubmissions(ms []models.ExchangeSubmission) []domain.SubmissionRecord {
	out := make([]domain.SubmissionRecord, len(ms))
	for i, m := range ms {
		out[i] = ToDomainSubmission(m)
	}
	return out
}
