package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"animator-service/internal/entity"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotRetryable = errors.New("result is not in a terminal state")
)

// Observer is called after every mutation with the new revision.
// It runs outside the store lock and must not block.
type Observer func(rev uint64)

// Store is the single source of truth for shots and their results.
// Every mutation runs as a closure over the current state under the lock, so no
// caller ever writes back a copy it read before a blocking call.
type Store struct {
	mu        sync.Mutex
	shots     []entity.ShotConfig
	rev       uint64
	observers []Observer
}

func New() *Store {
	return &Store{}
}

func (s *Store) Observe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// mutate runs fn under the lock and notifies observers when fn reports a change.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var (
		rev       uint64
		observers []Observer
	)
	if changed {
		s.rev++
		rev = s.rev
		observers = append(observers, s.observers...)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(rev)
	}
	return changed
}

func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Snapshot returns a deep copy of all shots in insertion order.
func (s *Store) Snapshot() []entity.ShotConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.ShotConfig, len(s.shots))
	for i := range s.shots {
		out[i] = s.shots[i].Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shots)
}

func (s *Store) Get(id string) (entity.ShotConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.ShotConfig{}, false
	}
	return s.shots[i].Clone(), true
}

// Included returns copies of the shots selected for the next batch.
func (s *Store) Included() []entity.ShotConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.ShotConfig
	for i := range s.shots {
		if s.shots[i].IncludeInBatch {
			out = append(out, s.shots[i].Clone())
		}
	}
	return out
}

// ClaimIncluded takes every selected shot out of the next batch in one mutation
// and returns copies of them. A second batch started meanwhile sees none of them.
func (s *Store) ClaimIncluded() []entity.ShotConfig {
	var out []entity.ShotConfig
	s.mutate(func() bool {
		for i := range s.shots {
			if !s.shots[i].IncludeInBatch {
				continue
			}
			s.shots[i].IncludeInBatch = false
			out = append(out, s.shots[i].Clone())
		}
		return len(out) > 0
	})
	return out
}

// Reselect puts claimed shots that were not submitted back into the next batch.
// Shots deleted in the meantime are skipped.
func (s *Store) Reselect(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mutate(func() bool {
		changed := false
		for _, id := range ids {
			i := s.indexOf(id)
			if i < 0 || s.shots[i].IncludeInBatch {
				continue
			}
			s.shots[i].IncludeInBatch = true
			changed = true
		}
		return changed
	})
}

func (s *Store) Add(shots ...entity.ShotConfig) {
	if len(shots) == 0 {
		return
	}
	s.mutate(func() bool {
		for _, sh := range shots {
			s.shots = append(s.shots, sh.Clone())
		}
		return true
	})
}

// Replace swaps the whole collection, used when restoring a snapshot.
func (s *Store) Replace(shots []entity.ShotConfig) {
	s.mutate(func() bool {
		s.shots = make([]entity.ShotConfig, len(shots))
		for i := range shots {
			s.shots[i] = shots[i].Clone()
		}
		return true
	})
}

// Update applies fn to the current version of a shot. fn must not touch Results.
func (s *Store) Update(id string, fn func(*entity.ShotConfig)) (entity.ShotConfig, error) {
	var (
		out   entity.ShotConfig
		found bool
	)
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		results := s.shots[i].Results
		fn(&s.shots[i])
		s.shots[i].ID = id
		s.shots[i].Results = results
		out = s.shots[i].Clone()
		found = true
		return true
	})
	if !found {
		return entity.ShotConfig{}, ErrNotFound
	}
	return out, nil
}

func (s *Store) Remove(id string) error {
	removed := s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.shots = append(s.shots[:i], s.shots[i+1:]...)
		return true
	})
	if !removed {
		return ErrNotFound
	}
	return nil
}

// DeselectAll clears the batch flag on every shot.
func (s *Store) DeselectAll() int {
	var n int
	s.mutate(func() bool {
		for i := range s.shots {
			if s.shots[i].IncludeInBatch {
				s.shots[i].IncludeInBatch = false
				n++
			}
		}
		return n > 0
	})
	return n
}

func (s *Store) RemoveResult(shotID, resultID string) error {
	removed := s.mutate(func() bool {
		i := s.indexOf(shotID)
		if i < 0 {
			return false
		}
		j := s.shots[i].ResultIndex(resultID)
		if j < 0 {
			return false
		}
		s.shots[i].Results = append(s.shots[i].Results[:j], s.shots[i].Results[j+1:]...)
		return true
	})
	if !removed {
		return ErrNotFound
	}
	return nil
}

// RecordSubmission appends a pending result for a freshly submitted job and
// takes the shot out of the next batch.
func (s *Store) RecordSubmission(shotID, resultID string, at time.Time) error {
	var found bool
	s.mutate(func() bool {
		i := s.indexOf(shotID)
		if i < 0 {
			return false
		}
		found = true
		sh := &s.shots[i]
		changed := sh.IncludeInBatch
		sh.IncludeInBatch = false
		if sh.ResultIndex(resultID) < 0 {
			sh.Results = append(sh.Results, entity.ResultRecord{
				ID:        resultID,
				Status:    entity.StatusPending,
				CreatedAt: at,
			})
			changed = true
		}
		return changed
	})
	if !found {
		return ErrNotFound
	}
	return nil
}

// Outstanding returns the sorted, deduplicated ids of results still awaited
// from the remote service. Records with a retry in flight are excluded.
func (s *Store) Outstanding() []string {
	s.mu.Lock()
	seen := make(map[string]struct{})
	ids := []string{}
	for i := range s.shots {
		for _, r := range s.shots[i].Results {
			if !r.Status.Outstanding() || r.Optimistic {
				continue
			}
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			ids = append(ids, r.ID)
		}
	}
	s.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// ApplyUpdate merges a remote status payload into every record carrying its job id.
// It reads the store at call time, never a state captured earlier. The returned
// record is the last one that changed, or the first match when nothing changed.
func (s *Store) ApplyUpdate(upd entity.StatusUpdate) (entity.ResultRecord, Transition) {
	var (
		out   entity.ResultRecord
		tr    Transition
		found bool
	)
	s.mutate(func() bool {
		for i := range s.shots {
			j := s.shots[i].ResultIndex(upd.JobID)
			if j < 0 {
				continue
			}
			merged, t := Merge(s.shots[i].Results[j], upd)
			if t == TransitionNone {
				if !found {
					out = s.shots[i].Results[j]
				}
				found = true
				continue
			}
			s.shots[i].Results[j] = merged
			out, tr, found = merged, t, true
		}
		return tr != TransitionNone
	})
	return out, tr
}

func (s *Store) indexOf(id string) int {
	for i := range s.shots {
		if s.shots[i].ID == id {
			return i
		}
	}
	return -1
}
