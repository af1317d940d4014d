package reconcile

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"animator-service/internal/entity"
	"animator-service/internal/feed"
	"animator-service/internal/metrics"
	"animator-service/internal/store"
)

const defaultResubscribeDelay = 5 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context, ids []string) (feed.Subscription, error)
}

// Push keeps one feed subscription scoped to the current outstanding ids and
// merges every delivered update into the store.
type Push struct {
	sub   Subscriber
	st    *store.Store
	delay time.Duration
	log   *zap.SugaredLogger

	mu     sync.Mutex
	scope  []string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPush(sub Subscriber, st *store.Store, resubscribeDelay time.Duration) *Push {
	if resubscribeDelay <= 0 {
		resubscribeDelay = defaultResubscribeDelay
	}
	return &Push{
		sub:   sub,
		st:    st,
		delay: resubscribeDelay,
		log:   zap.S().Named("push"),
	}
}

// Retarget replaces the subscription when the id membership differs from the
// current scope. ids must be sorted. An empty set tears the subscription down.
func (p *Push) Retarget(ctx context.Context, ids []string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Equal(p.scope, ids) {
		return false
	}
	p.stopLocked()

	p.scope = slices.Clone(ids)
	if len(ids) == 0 {
		return true
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.run(runCtx, p.scope, done)

	p.log.Debugw("push scope changed", "ids", len(ids))
	return true
}

func (p *Push) Scope() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.scope)
}

func (p *Push) Stop() {
	p.mu.Lock()
	p.stopLocked()
	p.scope = nil
	p.mu.Unlock()
}

func (p *Push) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

func (p *Push) run(ctx context.Context, ids []string, done chan struct{}) {
	defer close(done)

	for {
		sub, err := p.sub.Subscribe(ctx, ids)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.ReconcileErrors.WithLabelValues("push").Inc()
			p.log.Warnw("subscribe failed", "ids", len(ids), "error", err)
		} else {
			p.consume(ctx, sub)
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			metrics.ReconcileErrors.WithLabelValues("push").Inc()
			p.log.Warnw("feed subscription dropped", "ids", len(ids))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.delay):
		}
	}
}

func (p *Push) consume(ctx context.Context, sub feed.Subscription) {
	updates := sub.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			p.apply(upd)
		}
	}
}

func (p *Push) apply(upd entity.StatusUpdate) {
	rec, tr := p.st.ApplyUpdate(upd)
	if tr == store.TransitionNone {
		return
	}
	metrics.Merges.WithLabelValues("push", string(tr)).Inc()
	p.log.Debugw("merged status update", "job_id", rec.ID, "status", rec.Status)
}
