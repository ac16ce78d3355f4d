package services

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/SscSPs/exchange_desk/internal/utils/debounce"
	"github.com/SscSPs/exchange_desk/internal/utils/money"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// FormDeps are the collaborators shared by every exchange form.
type FormDeps struct {
	Rates    portssvc.RateSvcFacade
	Wallets  portssvc.WalletSvcFacade
	Quotes   portssvc.QuoteSvcFacade
	Exchange portssvc.ExchangeSvcFacade
	Clock    clockwork.Clock
	// Debounce is the quiet period before an amount is quoted.
	Debounce time.Duration
}

// leadingNumber matches the numeric prefix of an amount as typed, e.g. "12.5" in "12.5abc".
var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)`)

// ParseAmount reads the leading number of text. Empty or unparsable text is zero.
func ParseAmount(text string) decimal.Decimal {
	m := leadingNumber.FindString(text)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimNumber(m))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func trimNumber(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '+') {
		s = s[1:]
	}
	if n := len(s); n > 0 && s[n-1] == '.' {
		s = s[:n-1]
	}
	return s
}

// ExchangeForm is the server-side model of one member's exchange form: the
// selection, the debounced amount, the quote for the current tuple and the
// submission state machine.
type ExchangeForm struct {
	BaseService
	id       string
	deps     FormDeps
	ctx      context.Context
	cancel   context.CancelFunc
	sel      *SelectionStore
	amount   *debounce.Debouncer[decimal.Decimal]
	feedback *FeedbackRecorder

	stopWatch func()
	unsubSel  func()

	mu         sync.Mutex
	amountText string
	rawAmount  decimal.Decimal
	quoteKey   domain.QuoteKey
	quote      querycache.State[domain.Quote]
	quoteGen   uint64
	state      domain.SubmissionState
	closed     bool
}

// NewExchangeForm opens a form. ctx must carry the member's session; the form
// keeps its values but not its cancellation, and lives until Close.
func NewExchangeForm(ctx context.Context, id string, deps FormDeps) *ExchangeForm {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	formCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &ExchangeForm{
		id:       id,
		deps:     deps,
		ctx:      formCtx,
		cancel:   cancel,
		sel:      NewSelectionStore(),
		amount:   debounce.New(decimal.Zero, deps.Debounce, debounce.WithClock(deps.Clock)),
		feedback: NewFeedbackRecorder(deps.Clock),
		quote:    querycache.State[domain.Quote]{Status: querycache.StatusIdle},
		state:    domain.SubmissionIdle,
	}
	f.amount.OnSettle(func(decimal.Decimal) { f.requestQuote() })
	f.unsubSel = f.sel.Subscribe(func(domain.Selection) { f.requestQuote() })
	f.stopWatch = deps.Rates.WatchRates(formCtx)
	return f
}

// ID identifies the form.
func (f *ExchangeForm) ID() string {
	return f.id
}

// Selection exposes the form's selection store.
func (f *ExchangeForm) Selection() *SelectionStore {
	return f.sel
}

// SetAmount records the amount as typed and restarts the quote countdown.
func (f *ExchangeForm) SetAmount(text string) {
	amount := ParseAmount(text)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.amountText = text
	f.rawAmount = amount
	f.mu.Unlock()
	f.amount.Set(amount)
}

// quoteKeyFor is the tuple quoted for a selection: always foreign to home,
// in foreign units.
func quoteKeyFor(sel domain.Selection, amount decimal.Decimal) (domain.QuoteKey, bool) {
	_, foreign, ok := sel.Mode()
	if !ok {
		return domain.QuoteKey{}, false
	}
	return domain.QuoteKey{Source: foreign, Target: domain.HomeCurrency, Amount: amount}, true
}

// requestQuote prices the current tuple in the background. Results for a
// superseded tuple, or arriving after Close, are dropped.
func (f *ExchangeForm) requestQuote() {
	key, ok := quoteKeyFor(f.sel.Current(), f.amount.Value())

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.quoteGen++
	gen := f.quoteGen
	f.quoteKey = key
	if !ok || !key.Amount.IsPositive() {
		f.quote = querycache.State[domain.Quote]{Status: querycache.StatusIdle}
		f.mu.Unlock()
		return
	}
	f.quote = querycache.State[domain.Quote]{Status: querycache.StatusPending, IsFetching: true}
	f.mu.Unlock()

	go func() {
		st := f.deps.Quotes.GetQuote(f.ctx, key)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed || gen != f.quoteGen {
			return
		}
		f.quote = st
	}()
}

// Snapshot renders the form.
func (f *ExchangeForm) Snapshot() portssvc.DeskSnapshot {
	sel := f.sel.Current()
	mode, foreign, hasMode := sel.Mode()

	var rate *domain.Rate
	if hasMode {
		if st := f.deps.Rates.GetRates(f.ctx); st.HasData {
			if r, ok := domain.FindRate(st.Data, foreign); ok {
				rate = &r
			}
		}
	}

	debounced, settling := f.amount.Value(), f.amount.Pending()

	f.mu.Lock()
	defer f.mu.Unlock()

	snap := portssvc.DeskSnapshot{
		DeskID:          f.id,
		Selection:       sel,
		AmountText:      f.amountText,
		Amount:          f.rawAmount,
		DebouncedAmount: debounced,
		Debouncing:      settling,
		QuoteStatus:     string(f.quote.Status),
		Rate:            rate,
		Submitting:      f.state == domain.SubmissionSubmitting,
	}
	if hasMode {
		snap.Mode = mode
		snap.Currency = foreign
	}
	if f.quote.HasData {
		q := f.quote.Data
		snap.Quote = &q
		snap.QuoteDisplay = utils.FormatCurrency(q.ReceiveAmount, q.TargetCurrency)
	}
	if f.quote.Err != nil {
		snap.QuoteError = apperrors.MessageOf(f.quote.Err, "Failed to load quote")
	}
	if rate != nil && f.rawAmount.IsPositive() {
		estimate := money.ReceiveAmount(f.rawAmount, rate.Price)
		snap.Estimate = &estimate
		snap.EstimateDisplay = utils.FormatCurrency(estimate, domain.HomeCurrency)
	}
	snap.CanSubmit = f.canSubmitLocked(sel, debounced, settling) == nil
	return snap
}

// canSubmitLocked checks the submit preconditions. f.mu must be held.
func (f *ExchangeForm) canSubmitLocked(sel domain.Selection, debounced decimal.Decimal, settling bool) error {
	if f.closed {
		return apperrors.NewValidationError("exchange form is closed")
	}
	if f.state == domain.SubmissionSubmitting {
		return apperrors.ErrSubmissionInFlight
	}
	if !f.rawAmount.IsPositive() {
		return apperrors.NewValidationError("amount must be greater than zero")
	}
	if settling || !debounced.Equal(f.rawAmount) {
		return apperrors.NewValidationError("amount is still being quoted")
	}
	key, ok := quoteKeyFor(sel, f.rawAmount)
	if !ok {
		return apperrors.NewValidationError("select %s and one foreign currency", domain.HomeCurrency)
	}
	if !f.quote.IsSuccess() || !f.quote.HasData || !f.quote.Data.Key().Equal(key) {
		return apperrors.NewValidationError("no quote for the current amount")
	}
	return nil
}

// Submit runs the submission workflow for the current selection and amount.
// A second Submit while one is in flight returns apperrors.ErrSubmissionInFlight.
func (f *ExchangeForm) Submit(ctx context.Context) (domain.SubmissionResult, error) {
	sel := f.sel.Current()
	debounced, settling := f.amount.Value(), f.amount.Pending()

	f.mu.Lock()
	if err := f.canSubmitLocked(sel, debounced, settling); err != nil {
		f.mu.Unlock()
		return domain.SubmissionResult{}, err
	}
	mode, foreign, _ := sel.Mode()
	req := domain.SubmitRequest{Currency: foreign, Mode: mode, Amount: f.rawAmount}
	f.state = domain.SubmissionSubmitting
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.state = domain.SubmissionIdle
		f.mu.Unlock()
	}()

	return f.deps.Exchange.Submit(ctx, req, f.feedback), nil
}

// DrainFeedback returns and clears pending notifications and navigation.
func (f *ExchangeForm) DrainFeedback() ([]domain.Notification, domain.Route) {
	return f.feedback.Drain()
}

// Close stops the debouncer, the rate watcher and any in-flight quote read.
// It is idempotent.
func (f *ExchangeForm) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.cancel()
	f.amount.Stop()
	f.unsubSel()
	f.stopWatch()
}
