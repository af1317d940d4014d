package persist

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"animator-service/internal/metrics"
	"animator-service/internal/store"
)

const (
	DefaultDebounce = time.Second
	DefaultKey      = "shot-animator-store"

	shutdownFlushTimeout = 5 * time.Second
)

// Persister writes a projection of the store to a Backend after store changes,
// at most once per debounce window. Write failures never reach the store.
type Persister struct {
	st       *store.Store
	backend  Backend
	key      string
	debounce time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time
	kick     chan struct{}

	mu      sync.Mutex
	written uint64
	wrote   bool
}

func New(st *store.Store, backend Backend, key string, debounce time.Duration) *Persister {
	if key == "" {
		key = DefaultKey
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Persister{
		st:       st,
		backend:  backend,
		key:      key,
		debounce: debounce,
		log:      zap.S().Named("persist"),
		now:      time.Now,
		kick:     make(chan struct{}, 1),
	}
}

// Observe registers the persister with the store. Call it after Restore so the
// restored state is not immediately written back unchanged.
func (p *Persister) Observe() {
	p.st.Observe(func(uint64) {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	})
}

// Run flushes pending changes once per debounce window until ctx is done, then
// flushes one last time.
func (p *Persister) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			p.Flush(flushCtx)
			cancel()
			return nil
		case <-p.kick:
			if fire == nil {
				timer = time.NewTimer(p.debounce)
				fire = timer.C
			}
		case <-fire:
			fire = nil
			p.Flush(ctx)
		}
	}
}

// Flush writes the current store state unless that revision is already written.
// It reports whether the backend holds the current state afterwards.
func (p *Persister) Flush(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	rev := p.st.Revision()
	if p.wrote && rev == p.written {
		return true
	}

	data, err := Project(p.st.Snapshot(), p.now())
	if err != nil {
		metrics.SnapshotWrites.WithLabelValues("error").Inc()
		p.log.Errorw("failed to encode snapshot", "error", err)
		return false
	}

	if err := p.backend.Set(ctx, p.key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			metrics.SnapshotWrites.WithLabelValues("quota").Inc()
			p.log.Warnw("snapshot exceeds storage quota, state is kept in memory only", "bytes", len(data), "error", err)
			return false
		}
		metrics.SnapshotWrites.WithLabelValues("error").Inc()
		p.log.Warnw("failed to write snapshot", "error", err)
		return false
	}

	metrics.SnapshotWrites.WithLabelValues("ok").Inc()
	p.written, p.wrote = rev, true
	p.log.Debugw("snapshot written", "revision", rev, "bytes", len(data))
	return true
}

// Restore loads the stored snapshot into an empty store and returns the number
// of restored shots. A store that already holds shots is left alone.
func (p *Persister) Restore(ctx context.Context) (int, error) {
	if n := p.st.Len(); n > 0 {
		p.log.Infow("store already populated, skipping restore", "shots", n)
		return 0, nil
	}

	raw, err := p.backend.Get(ctx, p.key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		p.log.Info("no snapshot to restore")
		return 0, nil
	}

	shots, report, err := Repair(raw)
	if err != nil {
		return 0, err
	}
	p.st.Replace(shots)

	p.log.Infow("snapshot restored",
		"shots", report.Shots,
		"dropped_shots", report.DroppedShots,
		"dropped_references", report.DroppedReferences,
		"dropped_results", report.DroppedResults,
		"bad_timestamps", report.BadTimestamps,
		"interrupted_retries", report.InterruptedRetries,
	)
	return report.Shots, nil
}

// RepairStored rewrites the stored snapshot in its repaired form.
func RepairStored(ctx context.Context, backend Backend, key string, now time.Time) (RepairReport, error) {
	raw, err := backend.Get(ctx, key)
	if err != nil {
		return RepairReport{}, err
	}
	if raw == nil {
		return RepairReport{}, nil
	}

	shots, report, err := Repair(raw)
	if err != nil {
		return report, err
	}
	data, err := Project(shots, now)
	if err != nil {
		return report, err
	}
	if err := backend.Set(ctx, key, data); err != nil {
		return report, err
	}
	return report, nil
}
