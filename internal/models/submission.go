package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeSubmission is one row of the exchange_submissions journal.
type ExchangeSubmission struct {
	SubmissionID   string          `db:"submission_id"`
	MemberID       string          `db:"member_id"`
	RateID         int64           `db:"rate_id"` // 0 when the attempt aborted before a rate resolved
	SourceCurrency string          `db:"source_currency"`
	TargetCurrency string          `db:"target_currency"`
	Amount         decimal.Decimal `db:"amount"`
	Status         string          `db:"status"`
	ErrorKind      string          `db:"error_kind"`
	Message        string          `db:"message"`
	CreatedAt      time.Time       `db:"created_at"`
}
