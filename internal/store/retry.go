package store

import "animator-service/internal/entity"

// A retry moves one record through three observable steps:
//
//	failed -> processing (optimistic, old id) -> processing (confirmed, new id)
//	                                          -> failed (new error, old id)

// BeginRetry flips a terminal record to an optimistic processing state and
// returns the current shot so the caller can resubmit its inputs.
func (s *Store) BeginRetry(shotID, resultID string) (entity.ShotConfig, error) {
	var (
		out entity.ShotConfig
		err = ErrNotFound
	)
	s.mutate(func() bool {
		i := s.indexOf(shotID)
		if i < 0 {
			return false
		}
		j := s.shots[i].ResultIndex(resultID)
		if j < 0 {
			return false
		}
		rec := &s.shots[i].Results[j]
		if !rec.Status.Terminal() || rec.Optimistic {
			err = ErrNotRetryable
			return false
		}
		rec.Status = entity.StatusProcessing
		rec.Error = ""
		rec.OutputURL = ""
		rec.Optimistic = true
		out, err = s.shots[i].Clone(), nil
		return true
	})
	return out, err
}

// ConfirmRetry replaces the old job id with the one returned by the resubmission.
func (s *Store) ConfirmRetry(shotID, oldID, newID string) error {
	return s.finishRetry(shotID, oldID, func(rec *entity.ResultRecord) {
		rec.ID = newID
		rec.Status = entity.StatusProcessing
	})
}

// FailRetry reverts an in-flight retry to failed with the resubmission error.
func (s *Store) FailRetry(shotID, oldID, msg string) error {
	if msg == "" {
		msg = defaultFailureMessage
	}
	return s.finishRetry(shotID, oldID, func(rec *entity.ResultRecord) {
		rec.Status = entity.StatusFailed
		rec.Error = msg
	})
}

func (s *Store) finishRetry(shotID, oldID string, fn func(*entity.ResultRecord)) error {
	done := s.mutate(func() bool {
		i := s.indexOf(shotID)
		if i < 0 {
			return false
		}
		j := s.shots[i].ResultIndex(oldID)
		if j < 0 || !s.shots[i].Results[j].Optimistic {
			return false
		}
		rec := &s.shots[i].Results[j]
		rec.Optimistic = false
		rec.OutputURL = ""
		rec.Error = ""
		fn(rec)
		return true
	})
	if !done {
		return ErrNotFound
	}
	return nil
}
