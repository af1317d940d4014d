package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"animator-service/internal/entity"
)

// Subscription delivers status updates for the ids it was opened with.
// Updates is closed once the subscription ends.
type Subscription interface {
	Updates() <-chan entity.StatusUpdate
	Close() error
}

// RedisFeed publishes and subscribes to per-job channels "<prefix>:<jobId>".
type RedisFeed struct {
	rdb    redis.UniversalClient
	prefix string
	log    *zap.SugaredLogger
}

func NewRedisFeed(rdb redis.UniversalClient, prefix string) *RedisFeed {
	if prefix == "" {
		prefix = "generation:status"
	}
	return &RedisFeed{rdb: rdb, prefix: prefix, log: zap.S().Named("feed")}
}

func (f *RedisFeed) Channel(jobID string) string {
	return f.prefix + ":" + jobID
}

func (f *RedisFeed) Publish(ctx context.Context, upd entity.StatusUpdate) error {
	if upd.JobID == "" {
		return errors.New("status update without job id")
	}
	payload, err := json.Marshal(upd)
	if err != nil {
		return errors.Wrap(err, "encode status update")
	}
	if err := f.rdb.Publish(ctx, f.Channel(upd.JobID), payload).Err(); err != nil {
		return errors.Wrapf(err, "publish %s", upd.JobID)
	}
	return nil
}

// Subscribe opens one subscription scoped to exactly the given ids.
func (f *RedisFeed) Subscribe(ctx context.Context, ids []string) (Subscription, error) {
	if len(ids) == 0 {
		return nil, errors.New("subscribe: empty scope")
	}

	watched := make(map[string]struct{}, len(ids))
	channels := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := watched[id]; ok {
			continue
		}
		watched[id] = struct{}{}
		channels = append(channels, f.Channel(id))
	}

	ps := f.rdb.Subscribe(ctx, channels...)
	// wait for the subscription confirmation so connection errors surface here
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Wrap(err, "subscribe")
	}

	sub := &redisSubscription{
		ps:   ps,
		out:  make(chan entity.StatusUpdate, 16),
		done: make(chan struct{}),
	}
	go sub.pump(f, watched)
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan entity.StatusUpdate
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) Updates() <-chan entity.StatusUpdate {
	return s.out
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *redisSubscription) pump(f *RedisFeed, watched map[string]struct{}) {
	defer close(s.out)

	for msg := range s.ps.Channel() {
		upd, err := f.Decode(msg.Channel, msg.Payload)
		if err != nil {
			f.log.Warnw("dropping malformed status update", "channel", msg.Channel, "error", err)
			continue
		}
		if _, ok := watched[upd.JobID]; !ok {
			continue
		}
		select {
		case s.out <- upd:
		case <-s.done:
			return
		}
	}
}

// Decode parses a message payload; a missing job id is taken from the channel name.
func (f *RedisFeed) Decode(channel, payload string) (entity.StatusUpdate, error) {
	var upd entity.StatusUpdate
	if err := json.Unmarshal([]byte(payload), &upd); err != nil {
		return entity.StatusUpdate{}, errors.Wrap(err, "decode status update")
	}
	if upd.JobID == "" {
		upd.JobID = strings.TrimPrefix(channel, f.prefix+":")
	}
	if upd.JobID == "" || upd.JobID == channel {
		return entity.StatusUpdate{}, errors.Errorf("no job id for channel %s", channel)
	}
	return upd, nil
}
