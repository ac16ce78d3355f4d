package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// User facing outcomes of a submission.
const (
	MsgExchangeSucceeded = "Exchange completed"
	MsgRateChanged       = "The exchange rate has changed. Please try again."
	MsgExchangeFailed    = "Exchange failed"
	MsgRateUnavailable   = "Unable to load the latest exchange rate. Please try again."
)

// EventExchangeSubmitted is the analytics event emitted per attempt.
const EventExchangeSubmitted = "exchange_submitted"

type exchangeService struct {
	BaseService
	rates     portssvc.RateSvcFacade
	wallets   portssvc.WalletSvcFacade
	orders    portssvc.OrderHistorySvcFacade
	writer    portsrepo.OrderWriter
	journal   portsrepo.SubmissionRepositoryFacade
	analytics portssvc.AnalyticsSvc
	clock     clockwork.Clock
}

// ExchangeServiceOption configures the exchange service.
type ExchangeServiceOption func(*exchangeService)

// WithSubmissionJournal records every attempt in repo.
func WithSubmissionJournal(repo portsrepo.SubmissionRepositoryFacade) ExchangeServiceOption {
	return func(s *exchangeService) {
		s.journal = repo
	}
}

// WithAnalytics emits one event per attempt.
func WithAnalytics(analytics portssvc.AnalyticsSvc) ExchangeServiceOption {
	return func(s *exchangeService) {
		s.analytics = analytics
	}
}

// WithExchangeClock sets the clock used for record timestamps.
func WithExchangeClock(clock clockwork.Clock) ExchangeServiceOption {
	return func(s *exchangeService) {
		s.clock = clock
	}
}

// NewExchangeService creates the order submission workflow.
func NewExchangeService(
	rates portssvc.RateSvcFacade,
	wallets portssvc.WalletSvcFacade,
	orders portssvc.OrderHistorySvcFacade,
	writer portsrepo.OrderWriter,
	options ...ExchangeServiceOption,
) portssvc.ExchangeSvcFacade {
	s := &exchangeService{
		rates:   rates,
		wallets: wallets,
		orders:  orders,
		writer:  writer,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *exchangeService) Submit(ctx context.Context, req domain.SubmitRequest, fb portssvc.Feedback) domain.SubmissionResult {
	if err := validateSubmitRequest(req); err != nil {
		return s.finishFailure(ctx, fb, nil, domain.SubmissionFailed, err, apperrors.MessageOf(err, MsgExchangeFailed))
	}

	// The rate id must come from rates fetched now, never from the cached copy.
	rates, err := s.rates.RefetchRates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Aborting submission, rates unavailable", slog.String("currency", req.Currency.String()))
		return s.finishFailure(ctx, fb, nil, domain.SubmissionAborted, err, MsgRateUnavailable)
	}
	rate, ok := domain.FindRate(rates, req.Currency)
	if !ok {
		err := fmt.Errorf("no rate for %s: %w", req.Currency, apperrors.ErrRateUnavailable)
		s.LogError(ctx, err, "Aborting submission, currency missing from latest rates")
		return s.finishFailure(ctx, fb, nil, domain.SubmissionAborted, err, MsgRateUnavailable)
	}

	source, target := req.Mode.Pair(req.Currency)
	return s.PlaceOrder(ctx, domain.OrderRequest{
		RateID:         rate.ID,
		SourceCurrency: source,
		TargetCurrency: target,
		Amount:         req.Amount,
	}, fb)
}

func (s *exchangeService) PlaceOrder(ctx context.Context, req domain.OrderRequest, fb portssvc.Feedback) domain.SubmissionResult {
	if err := validateOrderRequest(req); err != nil {
		return s.finishFailure(ctx, fb, &req, domain.SubmissionFailed, err, apperrors.MessageOf(err, MsgExchangeFailed))
	}

	if err := s.writer.PlaceOrder(ctx, req); err != nil {
		s.LogError(ctx, err, "Order rejected",
			slog.Int64("rate_id", int64(req.RateID)),
			slog.String("pair", domain.PairKey(req.SourceCurrency, req.TargetCurrency)))

		var message string
		switch apperrors.KindOf(err) {
		case apperrors.KindRateMismatch:
			message = MsgRateChanged
			s.rates.InvalidateRates()
		case apperrors.KindValidation, apperrors.KindUnauthorized, apperrors.KindNetwork, apperrors.KindFailure:
			message = apperrors.MessageOf(err, MsgExchangeFailed)
		default:
			message = MsgExchangeFailed
		}
		return s.finishFailure(ctx, fb, &req, domain.SubmissionFailed, err, message)
	}

	s.wallets.InvalidateWallets(ctx)
	s.orders.InvalidateOrders(ctx)
	fb.Notify(domain.NotificationSuccess, MsgExchangeSucceeded)
	fb.Navigate(domain.RouteHistory)

	s.LogInfo(ctx, "Order placed",
		slog.Int64("rate_id", int64(req.RateID)),
		slog.String("pair", domain.PairKey(req.SourceCurrency, req.TargetCurrency)),
		slog.String("amount", req.Amount.String()))

	result := domain.SubmissionResult{
		Status:  domain.SubmissionSucceeded,
		Request: &req,
		Message: MsgExchangeSucceeded,
	}
	s.record(ctx, &req, result)
	return result
}

func (s *exchangeService) ListSubmissions(ctx context.Context, limit int) ([]domain.SubmissionRecord, error) {
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []domain.SubmissionRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.journal.ListSubmissions(ctx, memberID, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list submissions", slog.String("member_id", memberID))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return records, nil
}

// finishFailure emits exactly one error notification and records the attempt.
func (s *exchangeService) finishFailure(ctx context.Context, fb portssvc.Feedback, req *domain.OrderRequest, status domain.SubmissionStatus, err error, message string) domain.SubmissionResult {
	fb.Notify(domain.NotificationError, message)
	result := domain.SubmissionResult{
		Status:    status,
		Request:   req,
		ErrorKind: string(apperrors.KindOf(err)),
		Message:   message,
	}
	s.record(ctx, req, result)
	return result
}

// record writes the audit row and the analytics event. Neither may fail the submission.
func (s *exchangeService) record(ctx context.Context, req *domain.OrderRequest, result domain.SubmissionResult) {
	memberID, _ := s.MemberID(ctx)
	rec := domain.SubmissionRecord{
		SubmissionID: uuid.NewString(),
		MemberID:     memberID,
		Status:       result.Status,
		ErrorKind:    result.ErrorKind,
		Message:      result.Message,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if req != nil {
		rec.RateID = req.RateID
		rec.SourceCurrency = req.SourceCurrency
		rec.TargetCurrency = req.TargetCurrency
		rec.Amount = req.Amount
	}

	if s.journal != nil && memberID != "" {
		if err := s.journal.SaveSubmission(context.WithoutCancel(ctx), rec); err != nil {
			s.LogError(ctx, err, "Failed to record submission", slog.String("submission_id", rec.SubmissionID))
		}
	}
	if s.analytics != nil && memberID != "" {
		s.analytics.Enqueue(memberID, EventExchangeSubmitted, map[string]any{
			"submission_id":    rec.SubmissionID,
			"status":           string(rec.Status),
			"error_kind":       rec.ErrorKind,
			"from_currency":    string(rec.SourceCurrency),
			"to_currency":      string(rec.TargetCurrency),
			"forex_amount":     rec.Amount.String(),
			"exchange_rate_id": int64(rec.RateID),
		})
	}
}

func validateSubmitRequest(req domain.SubmitRequest) error {
	if !req.Currency.IsForeign() {
		return apperrors.NewValidationError("currency must be one of the foreign currencies, got %q", req.Currency)
	}
	if !req.Mode.IsValid() {
		return apperrors.NewValidationError("mode must be buy or sell, got %q", req.Mode)
	}
	if !req.Amount.IsPositive() {
		return apperrors.NewValidationError("amount must be greater than zero")
	}
	return nil
}

func validateOrderRequest(req domain.OrderRequest) error {
	if err := domain.ValidatePair(req.SourceCurrency, req.TargetCurrency); err != nil {
		return err
	}
	if !req.SourceCurrency.IsHome() && !req.TargetCurrency.IsHome() {
		return apperrors.NewValidationError("one side of the exchange must be %s", domain.HomeCurrency)
	}
	if req.RateID <= 0 {
		return apperrors.NewValidationError("exchange rate id is required")
	}
	if !req.Amount.IsPositive() {
		return apperrors.NewValidationError("amount must be greater than zero")
	}
	return nil
}
