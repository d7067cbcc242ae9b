package tool

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	"github.com/tanpawarit/Chative-Voice-SDR/pkg/metrics"
)

const (
	AckProfileUpdated = "Lead profile updated successfully."
	AckLeadSaved      = "Lead has been saved to the database."
	AckLeadDeferred   = "Lead details noted; saving will be retried by the team."

	defaultDeliveryTimeout = 15 * time.Second
)

type Option func(*LeadTools)

func WithClock(now func() time.Time) Option {
	return func(t *LeadTools) {
		if now != nil {
			t.now = now
		}
	}
}

// WithDelivery forwards every stored record to d in the background.
func WithDelivery(d contractx.LeadDelivery) Option {
	return func(t *LeadTools) {
		t.delivery = d
	}
}

// WithSubmitHook runs fn after a record was stored.
func WithSubmitHook(fn func(leadx.Record)) Option {
	return func(t *LeadTools) {
		t.onSubmit = fn
	}
}

// LeadTools implements the two model-callable operations for exactly one profile.
// Calls are expected to be sequential within a conversation.
type LeadTools struct {
	profile  *leadx.Profile
	sink     contractx.LeadSink
	delivery contractx.LeadDelivery
	now      func() time.Time
	onSubmit func(leadx.Record)

	deliveries sync.WaitGroup
}

func NewLeadTools(profile *leadx.Profile, sink contractx.LeadSink, opts ...Option) *LeadTools {
	t := &LeadTools{
		profile: profile,
		sink:    sink,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *LeadTools) UpdateLeadProfile(ctx context.Context, patch leadx.Patch) string {
	t.profile.Update(patch)
	log.Ctx(ctx).Info().
		Strs("filled", t.profile.Filled()).
		Strs("missing", t.profile.Missing()).
		Bool("complete", t.profile.IsComplete()).
		Msg("lead profile updated")
	return AckProfileUpdated
}

// SubmitLead stores a snapshot of the profile. It never fails the conversation:
// storage errors are logged and answered with a softer acknowledgement. The
// write ignores cancellation of ctx: a caller hanging up right after asking to
// submit must not lose the lead.
func (t *LeadTools) SubmitLead(ctx context.Context) string {
	rec := t.profile.Snapshot(t.now())
	logger := log.Ctx(ctx)

	if t.sink == nil {
		logger.Error().Msg("lead submit without a store")
		return AckLeadDeferred
	}
	if err := t.sink.Append(context.WithoutCancel(ctx), rec); err != nil {
		metrics.LeadStoreAppendFailures.WithLabelValues(backendOf(t.sink)).Inc()
		logger.Error().Err(err).Str("backend", backendOf(t.sink)).Msg("lead submit failed")
		return AckLeadDeferred
	}

	metrics.ObserveSubmission(rec.IsComplete())
	logger.Info().Bool("complete", rec.IsComplete()).Msg("lead submitted")

	if t.onSubmit != nil {
		t.onSubmit(rec)
	}
	t.deliver(ctx, rec)
	return AckLeadSaved
}

func (t *LeadTools) deliver(ctx context.Context, rec leadx.Record) {
	if t.delivery == nil {
		return
	}
	t.deliveries.Add(1)
	go func() {
		defer t.deliveries.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultDeliveryTimeout)
		defer cancel()
		if err := t.delivery.SendLead(dctx, rec); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("lead delivery failed")
		}
	}()
}

// Wait blocks until background deliveries have finished.
func (t *LeadTools) Wait() {
	t.deliveries.Wait()
}

func backendOf(sink contractx.LeadSink) string {
	if b, ok := sink.(interface{ Backend() string }); ok {
		return b.Backend()
	}
	return "unknown"
}
