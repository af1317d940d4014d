package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"animator-service/internal/entity"
)

const (
	submitPath    = "/api/generation/video"
	requestSource = "shot-animator"
)

// APIError is returned when the generation API rejects a request.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("generation api: status %d", e.StatusCode)
	}
	return strings.Join(e.Messages, ", ")
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type submitBody struct {
	Model           string               `json:"model"`
	Prompt          string               `json:"prompt"`
	Image           string               `json:"image"`
	ModelSettings   entity.ModelSettings `json:"modelSettings"`
	ReferenceImages []string             `json:"referenceImages,omitempty"`
	LastFrameImage  string               `json:"lastFrameImage,omitempty"`
	ExtraMetadata   map[string]string    `json:"extraMetadata,omitempty"`
}

type submitResp struct {
	GalleryID    string `json:"galleryId"`
	PredictionID string `json:"predictionId"`
}

type errorResp struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// Submit starts one generation job and returns the id it will be tracked under.
func (c *Client) Submit(ctx context.Context, req entity.GenerationRequest) (entity.SubmitResponse, error) {
	body, err := json.Marshal(submitBody{
		Model:           req.Model,
		Prompt:          req.Prompt,
		Image:           req.Image,
		ModelSettings:   req.Settings,
		ReferenceImages: req.ReferenceImages,
		LastFrameImage:  req.LastFrameImage,
		ExtraMetadata:   map[string]string{"source": requestSource},
	})
	if err != nil {
		return entity.SubmitResponse{}, errors.Wrap(err, "encode submission")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return entity.SubmitResponse{}, errors.Wrap(err, "build submission request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return entity.SubmitResponse{}, errors.Wrap(err, "submit generation")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entity.SubmitResponse{}, errors.Wrap(err, "read submission response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entity.SubmitResponse{}, decodeError(resp.StatusCode, raw)
	}

	var out submitResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return entity.SubmitResponse{}, errors.Wrap(err, "decode submission response")
	}
	if out.GalleryID == "" {
		return entity.SubmitResponse{}, errors.New("generation api returned no job id")
	}

	return entity.SubmitResponse{JobID: out.GalleryID, PredictionID: out.PredictionID}, nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}

	var er errorResp
	if err := json.Unmarshal(raw, &er); err == nil {
		for _, d := range er.Details {
			if d = strings.TrimSpace(d); d != "" {
				apiErr.Messages = append(apiErr.Messages, d)
			}
		}
		if len(apiErr.Messages) == 0 && er.Error != "" {
			apiErr.Messages = []string{er.Error}
		}
	}
	if len(apiErr.Messages) == 0 {
		apiErr.Messages = []string{"Generation failed"}
	}
	return apiErr
}
