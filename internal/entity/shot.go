package entity

import "time"

// ShotConfig is one unit of generation intent: a source image, a prompt and the
// results generated from it so far.
type ShotConfig struct {
	ID              string         `json:"id"`
	ImageURL        string         `json:"imageUrl"`
	ImageName       string         `json:"imageName"`
	Prompt          string         `json:"prompt"`
	ReferenceImages []string       `json:"referenceImages,omitempty"`
	LastFrameImage  string         `json:"lastFrameImage,omitempty"`
	IncludeInBatch  bool           `json:"includeInBatch"`
	Results         []ResultRecord `json:"results"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (s ShotConfig) Clone() ShotConfig {
	out := s
	if s.ReferenceImages != nil {
		out.ReferenceImages = append([]string(nil), s.ReferenceImages...)
	}
	out.Results = append([]ResultRecord{}, s.Results...)
	return out
}

// ResultIndex returns the position of the record with the given id, or -1.
func (s ShotConfig) ResultIndex(id string) int {
	for i := range s.Results {
		if s.Results[i].ID == id {
			return i
		}
	}
	return -1
}

type Outcome struct {
	ShotID       string `json:"shotId"`
	Success      bool   `json:"success"`
	ResultID     string `json:"resultId,omitempty"`
	PredictionID string `json:"predictionId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ModelSettings are the per-request parameters forwarded to the remote model.
type ModelSettings struct {
	Duration      int    `json:"duration" yaml:"duration" validate:"gt=0"`
	Resolution    string `json:"resolution" yaml:"resolution" validate:"required"`
	AspectRatio   string `json:"aspectRatio" yaml:"aspectRatio" validate:"required"`
	FPS           int    `json:"fps" yaml:"fps" validate:"gte=0"`
	CameraFixed   bool   `json:"cameraFixed" yaml:"cameraFixed"`
	Seed          *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	GenerateAudio bool   `json:"generateAudio,omitempty" yaml:"generateAudio,omitempty"`
}

// GenerationRequest is the payload for one remote submission.
// All asset references are durable at this point.
type GenerationRequest struct {
	Model           string
	Prompt          string
	Image           string
	ReferenceImages []string
	LastFrameImage  string
	Settings        ModelSettings
}

type SubmitResponse struct {
	JobID        string
	PredictionID string
}
