package httptransport

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"animator-service/internal/entity"
)

const maxUploadBytes = 32 << 20

type generateDTO struct {
	Model    string                `json:"model" validate:"required"`
	Settings *entity.ModelSettings `json:"settings,omitempty"` // nil => model defaults
}

type statusDTO struct {
	JobID       string `json:"jobId" validate:"required"`
	OutputURL   string `json:"outputUrl,omitempty" validate:"omitempty,url"`
	Status      string `json:"status,omitempty"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}

type assetResp struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

type outstandingResp struct {
	IDs        []string `json:"ids"`
	PollActive bool     `json:"pollActive"`
}

// settingsFor fills in the model defaults when the request carries no settings.
func (h *Handler) settingsFor(dto generateDTO) entity.ModelSettings {
	if dto.Settings != nil {
		return *dto.Settings
	}
	if m, ok := h.catalog.Get(dto.Model); ok {
		return m.Defaults
	}
	return entity.ModelSettings{}
}

// ListModels godoc
// @Summary List supported models and their limits
// @Tags models
// @Produce json
// @Success 200 {array} models.Model
// @Router /models [get]
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List())
}

// UploadAsset godoc
// @Summary Upload an image for later staging
// @Description Keeps the file in memory and returns a blob: reference usable as imageUrl, reference image or last frame.
// @Tags assets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "image"
// @Success 201 {object} assetResp
// @Failure 400 {object} apiError
// @Router /assets [post]
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	ref := h.blobs.Put(data, contentType, header.Filename)
	writeJSON(w, http.StatusCreated, assetResp{Ref: ref, Name: header.Filename, Size: len(data)})
}

// Generate godoc
// @Summary Submit every selected shot
// @Description Validates, stages and submits all shots with includeInBatch. Returns one outcome per shot.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body generateDTO true "model and settings (settings default to the model defaults)"
// @Success 200 {object} service.BatchResult
// @Failure 400 {object} apiError
// @Router /generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto generateDTO
	if err := decodeJSON(r, h.validate, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.gen.SubmitBatch(r.Context(), dto.Model, h.settingsFor(dto))
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RetryResult godoc
// @Summary Retry one finished result
// @Tags generation
// @Accept json
// @Produce json
// @Param id path string true "shot id"
// @Param resultId path string true "result id"
// @Param request body generateDTO true "model and settings"
// @Success 200 {object} entity.Outcome
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /shots/{id}/results/{resultId}/retry [post]
func (h *Handler) RetryResult(w http.ResponseWriter, r *http.Request) {
	var dto generateDTO
	if err := decodeJSON(r, h.validate, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.gen.Retry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "resultId"), dto.Model, h.settingsFor(dto))
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Outstanding godoc
// @Summary Jobs still awaited from the generation service
// @Tags generation
// @Produce json
// @Success 200 {object} outstandingResp
// @Router /outstanding [get]
func (h *Handler) Outstanding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, outstandingResp{IDs: h.st.Outstanding(), PollActive: h.poll.Active()})
}

// StatusWebhook godoc
// @Summary Relay a generation status update onto the notification feed
// @Tags webhooks
// @Accept json
// @Param request body statusDTO true "status update"
// @Success 202
// @Failure 400 {object} apiError
// @Failure 502 {object} apiError
// @Router /webhooks/status [post]
func (h *Handler) StatusWebhook(w http.ResponseWriter, r *http.Request) {
	var dto statusDTO
	if err := decodeJSON(r, h.validate, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := entity.StatusUpdate{
		JobID:       dto.JobID,
		OutputURL:   dto.OutputURL,
		Status:      dto.Status,
		ErrorDetail: dto.ErrorDetail,
	}
	if err := h.publisher.Publish(r.Context(), upd); err != nil {
		h.log.Warnw("failed to relay status update", "job_id", dto.JobID, "error", err)
		writeErr(w, http.StatusBadGateway, "feed unavailable")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
