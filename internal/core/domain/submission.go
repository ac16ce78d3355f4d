package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionState is the state of the order submission state machine.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
)

// SubmissionStatus is the terminal result of one attempt.
type SubmissionStatus string

const (
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
	SubmissionAborted   SubmissionStatus = "aborted"
)

// SubmitRequest is the user's intent before a rate has been resolved.
type SubmitRequest struct {
	Currency Currency
	Mode     Mode
	Amount   decimal.Decimal
}

// SubmissionResult describes how one attempt ended.
type SubmissionResult struct {
	Status    SubmissionStatus `json:"status"`
	Request   *OrderRequest    `json:"request,omitempty"`
	ErrorKind string           `json:"errorKind,omitempty"`
	Message   string           `json:"message"`
}

// SubmissionRecord is the audit row written for every attempt.
type SubmissionRecord struct {
	SubmissionID   string
	MemberID       string
	RateID         RateID
	SourceCurrency Currency
	TargetCurrency Currency
	Amount         decimal.Decimal
	Status         SubmissionStatus
	ErrorKind      string
	Message        string
	CreatedAt      time.Time
}
