package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDeskIdleTimeout = 30 * time.Minute
	defaultDeskMaxForms    = 1024
)

// deskRegistry keeps one exchange form per member. Forms idle for longer than
// the idle timeout, or pushed out by the size bound, are closed.
type deskRegistry struct {
	BaseService
	deps  FormDeps
	mu    sync.Mutex
	forms *expirable.LRU[string, *ExchangeForm]
}

// DeskRegistryOption configures the desk registry.
type DeskRegistryOption func(*deskRegistryConfig)

type deskRegistryConfig struct {
	idleTimeout time.Duration
	maxForms    int
}

// WithDeskIdleTimeout closes forms not touched for d.
func WithDeskIdleTimeout(d time.Duration) DeskRegistryOption {
	return func(c *deskRegistryConfig) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// WithDeskMaxForms bounds the number of open forms.
func WithDeskMaxForms(n int) DeskRegistryOption {
	return func(c *deskRegistryConfig) {
		if n > 0 {
			c.maxForms = n
		}
	}
}

// DeskRegistry is the concrete desk service; it also releases forms on logout.
type DeskRegistry interface {
	portssvc.DeskSvcFacade
	// Release closes the member's form, if any.
	Release(memberID string)
}

// NewDeskRegistry creates the per-member form registry.
func NewDeskRegistry(deps FormDeps, options ...DeskRegistryOption) DeskRegistry {
	cfg := deskRegistryConfig{idleTimeout: defaultDeskIdleTimeout, maxForms: defaultDeskMaxForms}
	for _, opt := range options {
		opt(&cfg)
	}
	onEvict := func(memberID string, form *ExchangeForm) {
		form.Close()
		slog.Debug("Exchange form closed", slog.String("member_id", memberID), slog.String("desk_id", form.ID()))
	}
	return &deskRegistry{
		deps:  deps,
		forms: expirable.NewLRU[string, *ExchangeForm](cfg.maxForms, onEvict, cfg.idleTimeout),
	}
}

// form returns the member's open form and refreshes its idle timer.
func (r *deskRegistry) form(ctx context.Context) (*ExchangeForm, error) {
	memberID, err := r.MemberID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	form, ok := r.forms.Get(memberID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	r.forms.Add(memberID, form)
	return form, nil
}

func (r *deskRegistry) Open(ctx context.Context) (portssvc.DeskSnapshot, error) {
	memberID, err := r.MemberID(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	r.warm(ctx)
	form := NewExchangeForm(ctx, uuid.NewString(), r.deps)

	r.mu.Lock()
	previous, hadPrevious := r.forms.Peek(memberID)
	r.forms.Add(memberID, form)
	r.mu.Unlock()

	if hadPrevious {
		previous.Close()
	}
	r.LogInfo(ctx, "Exchange form opened", slog.String("desk_id", form.ID()))
	return form.Snapshot(), nil
}

// warm loads the rates and wallets a fresh form renders. A failure leaves the
// query in its error state for the form to show; it does not fail Open.
func (r *deskRegistry) warm(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		return r.deps.Rates.GetRates(ctx).Err
	})
	if r.deps.Wallets != nil {
		g.Go(func() error {
			return r.deps.Wallets.GetWallets(ctx).Err
		})
	}
	if err := g.Wait(); err != nil {
		r.LogError(ctx, err, "Exchange form opened with incomplete data")
	}
}

func (r *deskRegistry) Snapshot(ctx context.Context) (portssvc.DeskSnapshot, error) {
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	return form.Snapshot(), nil
}

func (r *deskRegistry) SetAmount(ctx context.Context, text string) (portssvc.DeskSnapshot, error) {
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	form.SetAmount(text)
	return form.Snapshot(), nil
}

func (r *deskRegistry) SetSelection(ctx context.Context, sel domain.Selection) (portssvc.DeskSnapshot, error) {
	if sel.Tab == "" {
		sel.Tab = domain.TabReceive
	}
	if !sel.Tab.IsValid() {
		return portssvc.DeskSnapshot{}, apperrors.NewValidationError("unknown tab %q", sel.Tab)
	}
	if !sel.Source.IsValid() || !sel.Target.IsValid() {
		return portssvc.DeskSnapshot{}, apperrors.NewValidationError("unsupported currency in selection")
	}
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	form.Selection().Set(sel)
	return form.Snapshot(), nil
}

func (r *deskRegistry) Swap(ctx context.Context) (portssvc.DeskSnapshot, error) {
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	form.Selection().Swap()
	return form.Snapshot(), nil
}

func (r *deskRegistry) Reset(ctx context.Context) (portssvc.DeskSnapshot, error) {
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, err
	}
	form.Selection().Reset()
	return form.Snapshot(), nil
}

func (r *deskRegistry) Submit(ctx context.Context) (portssvc.DeskSnapshot, domain.SubmissionResult, error) {
	form, err := r.form(ctx)
	if err != nil {
		return portssvc.DeskSnapshot{}, domain.SubmissionResult{}, err
	}
	result, err := form.Submit(ctx)
	if err != nil {
		return form.Snapshot(), domain.SubmissionResult{}, err
	}
	snap := form.Snapshot()
	snap.Notifications, snap.Navigate = form.DrainFeedback()
	return snap, result, nil
}

func (r *deskRegistry) Close(ctx context.Context) error {
	memberID, err := r.MemberID(ctx)
	if err != nil {
		return err
	}
	r.Release(memberID)
	return nil
}

func (r *deskRegistry) Release(memberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms.Remove(memberID)
}
