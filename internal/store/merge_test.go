package store_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"animator-service/internal/entity"
	"animator-service/internal/store"
)

func TestMerge(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pending := entity.ResultRecord{ID: "g1", Status: entity.StatusPending, CreatedAt: created}
	processing := entity.ResultRecord{ID: "g1", Status: entity.StatusProcessing, CreatedAt: created}

	tests := []struct {
		name   string
		rec    entity.ResultRecord
		upd    entity.StatusUpdate
		want   entity.ResultRecord
		wantTr store.Transition
	}{
		{
			name:   "output url completes",
			rec:    processing,
			upd:    entity.StatusUpdate{JobID: "g1", OutputURL: "https://x/y.mp4"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusCompleted, OutputURL: "https://x/y.mp4", CreatedAt: created},
			wantTr: store.TransitionCompleted,
		},
		{
			name:   "explicit failed status uses default message",
			rec:    pending,
			upd:    entity.StatusUpdate{JobID: "g1", Status: "failed"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusFailed, Error: "Generation failed", CreatedAt: created},
			wantTr: store.TransitionFailed,
		},
		{
			name:   "embedded error detail fails",
			rec:    processing,
			upd:    entity.StatusUpdate{JobID: "g1", ErrorDetail: "NSFW content detected"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusFailed, Error: "NSFW content detected", CreatedAt: created},
			wantTr: store.TransitionFailed,
		},
		{
			name:   "canceled maps to failed",
			rec:    processing,
			upd:    entity.StatusUpdate{JobID: "g1", Status: "canceled"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusFailed, Error: "Generation failed", CreatedAt: created},
			wantTr: store.TransitionFailed,
		},
		{
			name:   "processing promotes pending",
			rec:    pending,
			upd:    entity.StatusUpdate{JobID: "g1", Status: "starting"},
			want:   processing,
			wantTr: store.TransitionProcessing,
		},
		{
			name:   "processing confirmation is a no-op",
			rec:    processing,
			upd:    entity.StatusUpdate{JobID: "g1", Status: "processing"},
			want:   processing,
			wantTr: store.TransitionNone,
		},
		{
			name:   "non durable output is ignored",
			rec:    processing,
			upd:    entity.StatusUpdate{JobID: "g1", OutputURL: "blob:abc"},
			want:   processing,
			wantTr: store.TransitionNone,
		},
		{
			name:   "completed never reverts",
			rec:    entity.ResultRecord{ID: "g1", Status: entity.StatusCompleted, OutputURL: "https://x/a.mp4"},
			upd:    entity.StatusUpdate{JobID: "g1", Status: "failed", ErrorDetail: "late failure"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusCompleted, OutputURL: "https://x/a.mp4"},
			wantTr: store.TransitionNone,
		},
		{
			name:   "failed never completes",
			rec:    entity.ResultRecord{ID: "g1", Status: entity.StatusFailed, Error: "boom"},
			upd:    entity.StatusUpdate{JobID: "g1", OutputURL: "https://x/a.mp4"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusFailed, Error: "boom"},
			wantTr: store.TransitionNone,
		},
		{
			name:   "optimistic retry ignores stale updates",
			rec:    entity.ResultRecord{ID: "g1", Status: entity.StatusProcessing, Optimistic: true},
			upd:    entity.StatusUpdate{JobID: "g1", Status: "failed"},
			want:   entity.ResultRecord{ID: "g1", Status: entity.StatusProcessing, Optimistic: true},
			wantTr: store.TransitionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tr := store.Merge(tt.rec, tt.upd)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTr, tr)
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	updates := []entity.StatusUpdate{
		{JobID: "g1", OutputURL: "https://x/y.mp4"},
		{JobID: "g1", Status: "failed", ErrorDetail: "boom"},
		{JobID: "g1", Status: "processing"},
		{JobID: "g1"},
	}
	for _, upd := range updates {
		rec := entity.ResultRecord{ID: "g1", Status: entity.StatusPending}
		once, _ := store.Merge(rec, upd)
		twice, tr := store.Merge(once, upd)
		assert.Equal(t, once, twice)
		assert.Equal(t, store.TransitionNone, tr)
	}
}

func TestMerge_MonotonicUnderShuffledDelivery(t *testing.T) {
	updates := []entity.StatusUpdate{
		{JobID: "g1", Status: "starting"},
		{JobID: "g1", Status: "processing"},
		{JobID: "g1", OutputURL: "https://x/y.mp4", Status: "succeeded"},
		{JobID: "g1", Status: "failed", ErrorDetail: "duplicate"},
		{JobID: "g1", OutputURL: "https://x/other.mp4"},
	}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		order := rng.Perm(len(updates))
		rec := entity.ResultRecord{ID: "g1", Status: entity.StatusPending}
		var terminal *entity.ResultRecord
		for _, idx := range order {
			rec, _ = store.Merge(rec, updates[idx])
			if terminal != nil {
				assert.Equal(t, *terminal, rec, "terminal record changed in round %d", round)
			}
			if rec.Status.Terminal() && terminal == nil {
				snapshot := rec
				terminal = &snapshot
			}
		}
		assert.True(t, rec.Status.Terminal())
	}
}
