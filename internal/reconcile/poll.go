package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"animator-service/internal/entity"
	"animator-service/internal/metrics"
	"animator-service/internal/store"
)

const DefaultPollInterval = 30 * time.Second

type StatusQuerier interface {
	StatusByIDs(ctx context.Context, ids []string) ([]entity.StatusUpdate, error)
}

// Poll periodically reads the status of every outstanding job and merges it
// into the store. It runs only while there is something outstanding.
type Poll struct {
	q        StatusQuerier
	st       *store.Store
	interval time.Duration
	jitter   time.Duration
	log      *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoll(q StatusQuerier, st *store.Store, interval, jitter time.Duration) *Poll {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if jitter < 0 {
		jitter = 0
	}
	if limit := interval / 4; jitter > limit {
		jitter = limit
	}
	return &Poll{
		q:        q,
		st:       st,
		interval: interval,
		jitter:   jitter,
		log:      zap.S().Named("poll"),
	}
}

func (p *Poll) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Start activates polling with one immediate query. It is a no-op while active.
func (p *Poll) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	metrics.PollActive.Set(1)

	go p.run(runCtx, done)
	p.log.Debugw("poll started", "interval", p.interval)
}

func (p *Poll) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	metrics.PollActive.Set(0)
	p.log.Debug("poll stopped")
}

// PollOnce queries the status of the current outstanding set and merges the
// rows. It returns the number of ids queried; zero means nothing is outstanding.
// Query errors are logged and retried on the next tick.
func (p *Poll) PollOnce(ctx context.Context) int {
	ids := p.st.Outstanding()
	if len(ids) == 0 {
		return 0
	}

	rows, err := p.q.StatusByIDs(ctx, ids)
	if err != nil {
		if ctx.Err() == nil {
			metrics.ReconcileErrors.WithLabelValues("poll").Inc()
			p.log.Warnw("status query failed", "ids", len(ids), "error", err)
		}
		return len(ids)
	}

	for _, row := range rows {
		rec, tr := p.st.ApplyUpdate(row)
		if tr == store.TransitionNone {
			continue
		}
		metrics.Merges.WithLabelValues("poll", string(tr)).Inc()
		p.log.Debugw("merged polled status", "job_id", rec.ID, "status", rec.Status)
	}
	return len(ids)
}

func (p *Poll) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if p.PollOnce(ctx) == 0 && p.selfStop(done) {
		return
	}

	ticker := jitterbug.New(p.interval, &jitterbug.Norm{Stdev: p.jitter, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if p.PollOnce(ctx) == 0 && p.selfStop(done) {
			return
		}
	}
}

// selfStop marks the poll inactive when the run owning done is still current
// and nothing became outstanding since the last query. It reports whether the
// run should exit.
func (p *Poll) selfStop(done chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != done {
		return true
	}
	// a submission may land between the empty query and here; its kick finds
	// the poll still active and does not restart it
	if len(p.st.Outstanding()) > 0 {
		return false
	}
	p.cancel()
	p.cancel, p.done = nil, nil
	metrics.PollActive.Set(0)
	p.log.Debug("nothing outstanding, poll stopped")
	return true
}
