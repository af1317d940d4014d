package httptransport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"animator-service/internal/entity"
	"animator-service/internal/models"
	"animator-service/internal/service"
	"animator-service/internal/staging"
	"animator-service/internal/store"
)

// Порт публикации статусов в feed (реализация: feed.RedisFeed)
type StatusPublisher interface {
	Publish(ctx context.Context, upd entity.StatusUpdate) error
}

// PollState reports whether the fallback poll is running (реализация: reconcile.Poll)
type PollState interface {
	Active() bool
}

type Handler struct {
	st        *store.Store
	gen       *service.GenerationService
	catalog   *models.Catalog
	blobs     *staging.BlobCache
	publisher StatusPublisher
	poll      PollState
	validate  *validator.Validate
	log       *zap.SugaredLogger
}

func NewHandler(st *store.Store, gen *service.GenerationService, catalog *models.Catalog, blobs *staging.BlobCache, publisher StatusPublisher, poll PollState) *Handler {
	return &Handler{
		st:        st,
		gen:       gen,
		catalog:   catalog,
		blobs:     blobs,
		publisher: publisher,
		poll:      poll,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       zap.S().Named("api"),
	}
}

type newShotDTO struct {
	ImageURL        string   `json:"imageUrl" validate:"required"`
	ImageName       string   `json:"imageName"`
	Prompt          string   `json:"prompt"`
	ReferenceImages []string `json:"referenceImages" validate:"max=8,dive,required"`
	LastFrameImage  string   `json:"lastFrameImage"`
	IncludeInBatch  *bool    `json:"includeInBatch,omitempty"` // nil => true
}

type addShotsDTO struct {
	Shots []newShotDTO `json:"shots" validate:"required,min=1,dive"`
}

type patchShotDTO struct {
	ImageName       *string   `json:"imageName,omitempty"`
	Prompt          *string   `json:"prompt,omitempty"`
	ReferenceImages *[]string `json:"referenceImages,omitempty" validate:"omitempty,max=8,dive,required"`
	LastFrameImage  *string   `json:"lastFrameImage,omitempty"`
	IncludeInBatch  *bool     `json:"includeInBatch,omitempty"`
}

type shotsResp struct {
	Shots []entity.ShotConfig `json:"shots"`
}

type deselectResp struct {
	Deselected int `json:"deselected"`
}

// ListShots godoc
// @Summary List shots
// @Tags shots
// @Produce json
// @Success 200 {object} shotsResp
// @Router /shots [get]
func (h *Handler) ListShots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shotsResp{Shots: h.st.Snapshot()})
}

// AddShots godoc
// @Summary Add shots
// @Description Adds one or more shots. includeInBatch defaults to true.
// @Tags shots
// @Accept json
// @Produce json
// @Param request body addShotsDTO true "shots to add"
// @Success 201 {object} shotsResp
// @Failure 400 {object} apiError
// @Router /shots [post]
func (h *Handler) AddShots(w http.ResponseWriter, r *http.Request) {
	var dto addShotsDTO
	if err := decodeJSON(r, h.validate, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	shots := make([]entity.ShotConfig, 0, len(dto.Shots))
	for _, s := range dto.Shots {
		if kind := entity.ClassifyAsset(s.ImageURL); kind == entity.AssetUnsupported {
			writeErr(w, http.StatusBadRequest, "unsupported imageUrl: "+s.ImageURL)
			return
		}
		include := true
		if s.IncludeInBatch != nil {
			include = *s.IncludeInBatch
		}
		shots = append(shots, entity.ShotConfig{
			ID:              uuid.NewString(),
			ImageURL:        strings.TrimSpace(s.ImageURL),
			ImageName:       s.ImageName,
			Prompt:          s.Prompt,
			ReferenceImages: s.ReferenceImages,
			LastFrameImage:  s.LastFrameImage,
			IncludeInBatch:  include,
			Results:         []entity.ResultRecord{},
			CreatedAt:       now,
		})
	}

	h.st.Add(shots...)
	writeJSON(w, http.StatusCreated, shotsResp{Shots: shots})
}

// GetShot godoc
// @Summary Get shot by id
// @Tags shots
// @Produce json
// @Param id path string true "shot id"
// @Success 200 {object} entity.ShotConfig
// @Failure 404 {object} apiError
// @Router /shots/{id} [get]
func (h *Handler) GetShot(w http.ResponseWriter, r *http.Request) {
	shot, ok := h.st.Get(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "shot not found")
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

// UpdateShot godoc
// @Summary Update shot inputs
// @Tags shots
// @Accept json
// @Produce json
// @Param id path string true "shot id"
// @Param request body patchShotDTO true "fields to change"
// @Success 200 {object} entity.ShotConfig
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /shots/{id} [patch]
func (h *Handler) UpdateShot(w http.ResponseWriter, r *http.Request) {
	var dto patchShotDTO
	if err := decodeJSON(r, h.validate, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	shot, err := h.st.Update(chi.URLParam(r, "id"), func(s *entity.ShotConfig) {
		if dto.ImageName != nil {
			s.ImageName = *dto.ImageName
		}
		if dto.Prompt != nil {
			s.Prompt = *dto.Prompt
		}
		if dto.ReferenceImages != nil {
			s.ReferenceImages = append([]string(nil), (*dto.ReferenceImages)...)
		}
		if dto.LastFrameImage != nil {
			s.LastFrameImage = *dto.LastFrameImage
		}
		if dto.IncludeInBatch != nil {
			s.IncludeInBatch = *dto.IncludeInBatch
		}
	})
	if err != nil {
		writeErr(w, statusFor(err), "shot not found")
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

// DeleteShot godoc
// @Summary Delete shot
// @Tags shots
// @Param id path string true "shot id"
// @Success 204
// @Failure 404 {object} apiError
// @Router /shots/{id} [delete]
func (h *Handler) DeleteShot(w http.ResponseWriter, r *http.Request) {
	if err := h.st.Remove(chi.URLParam(r, "id")); err != nil {
		writeErr(w, statusFor(err), "shot not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeselectAll godoc
// @Summary Clear the include flag of every shot
// @Tags shots
// @Produce json
// @Success 200 {object} deselectResp
// @Router /shots/deselect [post]
func (h *Handler) DeselectAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, deselectResp{Deselected: h.st.DeselectAll()})
}

// DeleteResult godoc
// @Summary Discard one result of a shot
// @Tags shots
// @Param id path string true "shot id"
// @Param resultId path string true "result id"
// @Success 204
// @Failure 404 {object} apiError
// @Router /shots/{id}/results/{resultId} [delete]
func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.st.RemoveResult(chi.URLParam(r, "id"), chi.URLParam(r, "resultId")); err != nil {
		writeErr(w, statusFor(err), "result not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
