package service

import (
	"context"
	"strings"

	"animator-service/internal/entity"
)

// Retry resubmits the inputs of one terminal result. The record is flipped to
// processing before the remote call and keeps its position in the shot: it
// takes the new job id on success or returns to failed with the new error.
func (s *GenerationService) Retry(ctx context.Context, shotID, resultID, modelID string, settings entity.ModelSettings) (entity.Outcome, error) {
	shot, err := s.st.BeginRetry(shotID, resultID)
	if err != nil {
		return entity.Outcome{}, err
	}
	log := s.log.With("shot_id", shotID, "result_id", resultID, "model", modelID)

	model, known := s.catalog.Get(modelID)
	if known {
		var notice string
		if shot, notice = applyReferencePolicy(model, shot); notice != "" {
			log.Infow("dropping reference images", "notice", notice)
		}
	}

	if problems := s.check(modelID, model, known, shot, settings); len(problems) > 0 {
		msg := strings.Join(problems, "; ")
		s.fail(shotID, resultID, msg)
		return entity.Outcome{ShotID: shotID, Error: msg}, nil
	}

	resp, err := s.submit(ctx, model, shot, settings)
	if err != nil {
		log.Warnw("retry failed", "error", err)
		s.fail(shotID, resultID, err.Error())
		return entity.Outcome{ShotID: shotID, Error: err.Error()}, nil
	}

	if err := s.st.ConfirmRetry(shotID, resultID, resp.JobID); err != nil {
		log.Warnw("result removed while retrying, job not tracked", "job_id", resp.JobID)
	} else {
		log.Infow("retry submitted", "job_id", resp.JobID)
	}

	return entity.Outcome{
		ShotID:       shotID,
		Success:      true,
		ResultID:     resp.JobID,
		PredictionID: resp.PredictionID,
	}, nil
}

func (s *GenerationService) fail(shotID, resultID, msg string) {
	if err := s.st.FailRetry(shotID, resultID, msg); err != nil {
		s.log.Warnw("result removed while retrying", "shot_id", shotID, "result_id", resultID)
	}
}
