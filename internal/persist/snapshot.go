package persist

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"animator-service/internal/entity"
)

const (
	SnapshotVersion = 1

	interruptedRetryMessage = "Retry interrupted before confirmation"
)

type snapshot struct {
	Version int            `json:"version"`
	SavedAt string         `json:"savedAt"`
	Shots   []snapshotShot `json:"shots"`
}

type snapshotShot struct {
	ID              string           `json:"id"`
	ImageURL        string           `json:"imageUrl"`
	ImageName       string           `json:"imageName,omitempty"`
	Prompt          string           `json:"prompt"`
	ReferenceImages []string         `json:"referenceImages,omitempty"`
	LastFrameImage  string           `json:"lastFrameImage,omitempty"`
	IncludeInBatch  bool             `json:"includeInBatch"`
	Results         []snapshotResult `json:"results"`
	CreatedAt       string           `json:"createdAt"`
}

type snapshotResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	OutputURL  string `json:"outputUrl,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"createdAt"`
	Optimistic bool   `json:"optimistic,omitempty"`
}

// Project serializes the part of the store that can survive a restart.
// Shots without a durable primary asset are left out, non-durable auxiliary
// references are stripped and completed results without a durable output are dropped.
func Project(shots []entity.ShotConfig, savedAt time.Time) ([]byte, error) {
	snap := snapshot{
		Version: SnapshotVersion,
		SavedAt: savedAt.UTC().Format(time.RFC3339Nano),
		Shots:   make([]snapshotShot, 0, len(shots)),
	}

	for _, shot := range shots {
		if !entity.IsDurable(shot.ImageURL) {
			continue
		}
		out := snapshotShot{
			ID:              shot.ID,
			ImageURL:        shot.ImageURL,
			ImageName:       shot.ImageName,
			Prompt:          shot.Prompt,
			ReferenceImages: durableOnly(shot.ReferenceImages),
			IncludeInBatch:  shot.IncludeInBatch,
			Results:         make([]snapshotResult, 0, len(shot.Results)),
			CreatedAt:       formatTime(shot.CreatedAt),
		}
		if entity.IsDurable(shot.LastFrameImage) {
			out.LastFrameImage = shot.LastFrameImage
		}
		for _, r := range shot.Results {
			if r.Status == entity.StatusCompleted && !entity.IsDurable(r.OutputURL) {
				continue
			}
			out.Results = append(out.Results, snapshotResult{
				ID:         r.ID,
				Status:     string(r.Status),
				OutputURL:  r.OutputURL,
				Error:      r.Error,
				CreatedAt:  formatTime(r.CreatedAt),
				Optimistic: r.Optimistic,
			})
		}
		snap.Shots = append(snap.Shots, out)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// RepairReport counts what Repair had to fix.
type RepairReport struct {
	Shots              int
	DroppedShots       int
	DroppedReferences  int
	DroppedResults     int
	BadTimestamps      int
	InterruptedRetries int
}

// Repair parses a stored snapshot and brings it back to a state the store can
// hold: non-durable references are stripped, unparseable timestamps fall back
// to the snapshot time and retries that never got confirmed become failures.
func Repair(raw []byte) ([]entity.ShotConfig, RepairReport, error) {
	var (
		snap   snapshot
		report RepairReport
	)
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, report, errors.Wrap(err, "decode snapshot")
	}
	if snap.Version > SnapshotVersion {
		return nil, report, errors.Errorf("unsupported snapshot version %d", snap.Version)
	}

	savedAt, err := time.Parse(time.RFC3339Nano, snap.SavedAt)
	if err != nil {
		savedAt = time.Now().UTC()
		report.BadTimestamps++
	}
	parse := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			report.BadTimestamps++
			return savedAt
		}
		return t
	}

	shots := make([]entity.ShotConfig, 0, len(snap.Shots))
	seen := make(map[string]struct{}, len(snap.Shots))
	for _, s := range snap.Shots {
		if _, dup := seen[s.ID]; dup || s.ID == "" || !entity.IsDurable(s.ImageURL) {
			report.DroppedShots++
			continue
		}
		seen[s.ID] = struct{}{}

		shot := entity.ShotConfig{
			ID:              s.ID,
			ImageURL:        s.ImageURL,
			ImageName:       s.ImageName,
			Prompt:          s.Prompt,
			ReferenceImages: durableOnly(s.ReferenceImages),
			IncludeInBatch:  s.IncludeInBatch,
			Results:         make([]entity.ResultRecord, 0, len(s.Results)),
			CreatedAt:       parse(s.CreatedAt),
		}
		report.DroppedReferences += len(s.ReferenceImages) - len(shot.ReferenceImages)
		if entity.IsDurable(s.LastFrameImage) {
			shot.LastFrameImage = s.LastFrameImage
		} else if s.LastFrameImage != "" {
			report.DroppedReferences++
		}

		for _, r := range s.Results {
			rec, ok := repairResult(r, parse, &report)
			if !ok {
				report.DroppedResults++
				continue
			}
			shot.Results = append(shot.Results, rec)
		}
		shots = append(shots, shot)
	}

	report.Shots = len(shots)
	return shots, report, nil
}

func repairResult(r snapshotResult, parse func(string) time.Time, report *RepairReport) (entity.ResultRecord, bool) {
	status := entity.ResultStatus(r.Status)
	switch status {
	case entity.StatusPending, entity.StatusProcessing, entity.StatusCompleted, entity.StatusFailed:
	default:
		return entity.ResultRecord{}, false
	}
	if r.ID == "" {
		return entity.ResultRecord{}, false
	}

	rec := entity.ResultRecord{
		ID:        r.ID,
		Status:    status,
		OutputURL: r.OutputURL,
		Error:     r.Error,
		CreatedAt: parse(r.CreatedAt),
	}

	if r.Optimistic {
		report.InterruptedRetries++
		rec.Status = entity.StatusFailed
		rec.OutputURL = ""
		rec.Error = interruptedRetryMessage
		return rec, true
	}

	switch rec.Status {
	case entity.StatusCompleted:
		if !entity.IsDurable(rec.OutputURL) {
			return entity.ResultRecord{}, false
		}
		rec.Error = ""
	case entity.StatusFailed:
		rec.OutputURL = ""
	default:
		rec.OutputURL, rec.Error = "", ""
	}
	return rec, true
}

func durableOnly(refs []string) []string {
	var out []string
	for _, ref := range refs {
		if entity.IsDurable(ref) {
			out = append(out, ref)
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
