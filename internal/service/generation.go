package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"animator-service/internal/entity"
	"animator-service/internal/metrics"
	"animator-service/internal/models"
	"animator-service/internal/store"
)

var ErrNothingSelected = errors.New("no shots selected for generation")

// Порт удалённого API генерации (реализация: remote.Client)
type Generator interface {
	Submit(ctx context.Context, req entity.GenerationRequest) (entity.SubmitResponse, error)
}

// Порт загрузки ассетов (реализация: staging.Stager)
type AssetStager interface {
	Stage(ctx context.Context, ref, filename string) (string, error)
}

type BatchResult struct {
	Outcomes []entity.Outcome `json:"outcomes"`
	Notices  []string         `json:"notices,omitempty"`
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

type GenerationService struct {
	st          *store.Store
	catalog     *models.Catalog
	gen         Generator
	stager      AssetStager
	validate    *validator.Validate
	concurrency int
	now         func() time.Time
	log         *zap.SugaredLogger
}

type Option func(*GenerationService)

// WithConcurrency caps the number of shots submitted at once. Zero means no cap.
func WithConcurrency(n int) Option {
	return func(s *GenerationService) {
		s.concurrency = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *GenerationService) {
		s.now = now
	}
}

func NewGenerationService(st *store.Store, catalog *models.Catalog, gen Generator, stager AssetStager, opts ...Option) *GenerationService {
	s := &GenerationService{
		st:       st,
		catalog:  catalog,
		gen:      gen,
		stager:   stager,
		validate: newValidator(),
		now:      time.Now,
		log:      zap.S().Named("generation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitBatch submits every shot marked for inclusion. The result holds exactly
// one outcome per included shot, in store order; shots fail independently.
// The selection is claimed up front, so overlapping batches never submit the
// same shot twice. Shots that were not submitted are selected again.
func (s *GenerationService) SubmitBatch(ctx context.Context, modelID string, settings entity.ModelSettings) (*BatchResult, error) {
	shots := s.st.ClaimIncluded()
	if len(shots) == 0 {
		return nil, ErrNothingSelected
	}

	model, known := s.catalog.Get(modelID)
	res := &BatchResult{Outcomes: make([]entity.Outcome, len(shots))}

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, shot := range shots {
		i, shot := i, shot
		if known {
			var notice string
			shot, notice = applyReferencePolicy(model, shot)
			if notice != "" {
				s.log.Infow("dropping reference images", "shot_id", shot.ID, "model", model.ID)
				res.Notices = append(res.Notices, notice)
			}
		}

		if problems := s.check(modelID, model, known, shot, settings); len(problems) > 0 {
			metrics.Submissions.WithLabelValues("invalid").Inc()
			res.Outcomes[i] = entity.Outcome{ShotID: shot.ID, Error: strings.Join(problems, "; ")}
			continue
		}

		g.Go(func() error {
			res.Outcomes[i] = s.dispatch(ctx, model, shot, settings)
			return nil
		})
	}
	_ = g.Wait()

	var unsent []string
	for _, o := range res.Outcomes {
		if !o.Success {
			unsent = append(unsent, o.ShotID)
		}
	}
	s.st.Reselect(unsent...)

	s.log.Infow("batch submitted", "model", modelID, "shots", len(shots), "succeeded", res.Succeeded())
	return res, nil
}

// dispatch stages the shot assets, submits one request and records the new job.
func (s *GenerationService) dispatch(ctx context.Context, model models.Model, shot entity.ShotConfig, settings entity.ModelSettings) entity.Outcome {
	resp, err := s.submit(ctx, model, shot, settings)
	if err != nil {
		s.log.Warnw("submission failed", "shot_id", shot.ID, "model", model.ID, "error", err)
		return entity.Outcome{ShotID: shot.ID, Error: err.Error()}
	}

	if err := s.st.RecordSubmission(shot.ID, resp.JobID, s.now()); err != nil {
		s.log.Warnw("shot removed while submitting, job not tracked", "shot_id", shot.ID, "job_id", resp.JobID)
	}

	return entity.Outcome{
		ShotID:       shot.ID,
		Success:      true,
		ResultID:     resp.JobID,
		PredictionID: resp.PredictionID,
	}
}

func (s *GenerationService) submit(ctx context.Context, model models.Model, shot entity.ShotConfig, settings entity.ModelSettings) (entity.SubmitResponse, error) {
	req, err := s.stage(ctx, model, shot, settings)
	if err != nil {
		metrics.Submissions.WithLabelValues("staging_failed").Inc()
		return entity.SubmitResponse{}, err
	}

	start := time.Now()
	resp, err := s.gen.Submit(ctx, req)
	metrics.SubmitLatency.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		return entity.SubmitResponse{}, err
	}

	metrics.Submissions.WithLabelValues("ok").Inc()
	return resp, nil
}

// stage turns every asset of the shot into a durable URI. All uploads of one
// shot run concurrently and all of them finish before the request is built.
func (s *GenerationService) stage(ctx context.Context, model models.Model, shot entity.ShotConfig, settings entity.ModelSettings) (entity.GenerationRequest, error) {
	name := shot.ImageName
	if name == "" {
		name = shot.ID
	}

	req := entity.GenerationRequest{
		Model:           model.ID,
		Prompt:          strings.TrimSpace(shot.Prompt),
		ReferenceImages: make([]string, len(shot.ReferenceImages)),
		Settings:        settings,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		uri, err := s.stager.Stage(gctx, shot.ImageURL, name)
		if err != nil {
			return errors.Wrap(err, "stage image")
		}
		req.Image = uri
		return nil
	})
	for i, ref := range shot.ReferenceImages {
		i, ref := i, ref
		g.Go(func() error {
			uri, err := s.stager.Stage(gctx, ref, fmt.Sprintf("reference-%d-%s", i, name))
			if err != nil {
				return errors.Wrapf(err, "stage reference image %d", i+1)
			}
			req.ReferenceImages[i] = uri
			return nil
		})
	}
	if shot.LastFrameImage != "" {
		g.Go(func() error {
			uri, err := s.stager.Stage(gctx, shot.LastFrameImage, "lastframe-"+name)
			if err != nil {
				return errors.Wrap(err, "stage last frame")
			}
			req.LastFrameImage = uri
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return entity.GenerationRequest{}, err
	}
	if len(req.ReferenceImages) == 0 {
		req.ReferenceImages = nil
	}
	return req, nil
}

// applyReferencePolicy drops reference images when the model gives the last
// frame priority over them. It returns the notice to show, if any.
func applyReferencePolicy(model models.Model, shot entity.ShotConfig) (entity.ShotConfig, string) {
	if !model.LastFrameOverridesReferences || len(shot.ReferenceImages) == 0 || shot.LastFrameImage == "" {
		return shot, ""
	}
	shot.ReferenceImages = nil

	name := shot.ImageName
	if name == "" {
		name = shot.ID
	}
	return shot, fmt.Sprintf("%s: %s can't use both reference images and last frame. Using last frame only.", name, model.DisplayName)
}
