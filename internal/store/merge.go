package store

import "animator-service/internal/entity"

const defaultFailureMessage = "Generation failed"

// Transition names the change Merge applied to a record.
type Transition string

const (
	TransitionNone       Transition = ""
	TransitionProcessing Transition = "processing"
	TransitionCompleted  Transition = "completed"
	TransitionFailed     Transition = "failed"
)

// Merge applies a remote status payload to a record. It never moves a terminal
// record and never touches a record whose retry is still in flight, so applying
// the same payload twice, or payloads from both channels in any order, converges.
func Merge(rec entity.ResultRecord, upd entity.StatusUpdate) (entity.ResultRecord, Transition) {
	if rec.Status.Terminal() || rec.Optimistic {
		return rec, TransitionNone
	}

	remote := entity.NormalizeRemoteStatus(upd.Status)

	if upd.OutputURL != "" && entity.IsDurable(upd.OutputURL) && rec.OutputURL == "" {
		rec.Status = entity.StatusCompleted
		rec.OutputURL = upd.OutputURL
		rec.Error = ""
		return rec, TransitionCompleted
	}

	if (remote == entity.StatusFailed || upd.ErrorDetail != "") && rec.Status != entity.StatusFailed {
		rec.Status = entity.StatusFailed
		rec.OutputURL = ""
		rec.Error = upd.ErrorDetail
		if rec.Error == "" {
			rec.Error = defaultFailureMessage
		}
		return rec, TransitionFailed
	}

	if remote == entity.StatusProcessing && rec.Status == entity.StatusPending {
		rec.Status = entity.StatusProcessing
		return rec, TransitionProcessing
	}

	return rec, TransitionNone
}
