package reconcile

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"animator-service/internal/metrics"
	"animator-service/internal/store"
)

// Scheduler watches the store and keeps both reconciliation channels aimed at
// the current outstanding set: push is rescoped on membership change, poll runs
// while the set is non-empty.
type Scheduler struct {
	st   *store.Store
	push *Push
	poll *Poll
	kick chan struct{}
	log  *zap.SugaredLogger

	last []string
}

func NewScheduler(st *store.Store, push *Push, poll *Poll) *Scheduler {
	s := &Scheduler{
		st:   st,
		push: push,
		poll: poll,
		kick: make(chan struct{}, 1),
		log:  zap.S().Named("scheduler"),
	}
	st.Observe(s.notify)
	return s
}

func (s *Scheduler) notify(uint64) {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run reconciles once, then again after every store change, until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			s.push.Stop()
			s.poll.Stop()
			s.log.Info("scheduler stopped")
			return nil
		case <-s.kick:
			s.Reconcile(ctx)
		}
	}
}

func (s *Scheduler) Reconcile(ctx context.Context) {
	ids := s.st.Outstanding()
	metrics.OutstandingJobs.Set(float64(len(ids)))

	if !slices.Equal(s.last, ids) {
		s.log.Debugw("outstanding set changed", "before", len(s.last), "after", len(ids))
		s.last = ids
	}

	s.push.Retarget(ctx, ids)
	if len(ids) == 0 {
		s.poll.Stop()
		return
	}
	s.poll.Start(ctx)
}
