package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"animator-service/internal/entity"
	"animator-service/internal/models"
	"animator-service/internal/service"
	"animator-service/internal/staging"
	"animator-service/internal/store"
	httptransport "animator-service/internal/transport/http"
)

// ---- fakes ----

type generatorStub struct {
	requests []entity.GenerationRequest
}

func (g *generatorStub) Submit(ctx context.Context, req entity.GenerationRequest) (entity.SubmitResponse, error) {
	g.requests = append(g.requests, req)
	return entity.SubmitResponse{JobID: "gal-1", PredictionID: "pred-1"}, nil
}

type passthroughStager struct{}

func (passthroughStager) Stage(ctx context.Context, ref, filename string) (string, error) {
	return ref, nil
}

type publisherStub struct {
	published []entity.StatusUpdate
	err       error
}

func (p *publisherStub) Publish(ctx context.Context, upd entity.StatusUpdate) error {
	p.published = append(p.published, upd)
	return p.err
}

type pollStub bool

func (p pollStub) Active() bool { return bool(p) }

// ---- helpers ----

type env struct {
	st        *store.Store
	gen       *generatorStub
	blobs     *staging.BlobCache
	publisher *publisherStub
	router    http.Handler
}

func newEnv() *env {
	e := &env{
		st:        store.New(),
		gen:       &generatorStub{},
		blobs:     staging.NewBlobCache(time.Hour),
		publisher: &publisherStub{},
	}
	catalog := models.Default()
	svc := service.NewGenerationService(e.st, catalog, e.gen, passthroughStager{})
	h := httptransport.NewHandler(e.st, svc, catalog, e.blobs, e.publisher, pollStub(true))
	e.router = httptransport.Routes(h, "http://localhost:3000")
	return e
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func addShot(t *testing.T, e *env, body string) entity.ShotConfig {
	t.Helper()
	rr := e.do(http.MethodPost, "/shots", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Shots []entity.ShotConfig `json:"shots"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	if len(resp.Shots) != 1 {
		t.Fatalf("expected one shot, got %d", len(resp.Shots))
	}
	return resp.Shots[0]
}

// ---- tests ----

func TestHTTP_AddShot_DefaultsToIncluded(t *testing.T) {
	e := newEnv()
	shot := addShot(t, e, `{"shots":[{"imageUrl":"https://cdn.example.com/a.png","imageName":"a.png","prompt":"pan"}]}`)

	if !shot.IncludeInBatch {
		t.Fatalf("expected includeInBatch=true by default")
	}

	rr := e.do(http.MethodGet, "/shots/"+shot.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["prompt"] != "pan" {
		t.Fatalf("expected prompt=pan, got %v", got["prompt"])
	}
}

func TestHTTP_AddShot_400_WithoutImage(t *testing.T) {
	e := newEnv()
	rr := e.do(http.MethodPost, "/shots", `{"shots":[{"prompt":"pan"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
	}

	rr = e.do(http.MethodPost, "/shots", `{"shots":[{"imageUrl":"ftp://x/a.png"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported reference, got %d", rr.Code)
	}
	if e.st.Len() != 0 {
		t.Fatalf("expected no shots stored, got %d", e.st.Len())
	}
}

func TestHTTP_Generate_UsesModelDefaults(t *testing.T) {
	e := newEnv()
	shot := addShot(t, e, `{"shots":[{"imageUrl":"https://cdn.example.com/a.png","prompt":"pan"}]}`)

	rr := e.do(http.MethodPost, "/generate", `{"model":"seedance-lite"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var res service.BatchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(res.Outcomes) != 1 || !res.Outcomes[0].Success || res.Outcomes[0].ResultID != "gal-1" {
		t.Fatalf("unexpected outcomes: %+v", res.Outcomes)
	}

	def, _ := models.Default().Get("seedance-lite")
	if len(e.gen.requests) != 1 || e.gen.requests[0].Settings != def.Defaults {
		t.Fatalf("expected model defaults to be submitted, got %+v", e.gen.requests)
	}

	stored, _ := e.st.Get(shot.ID)
	if stored.IncludeInBatch || len(stored.Results) != 1 || stored.Results[0].Status != entity.StatusPending {
		t.Fatalf("unexpected stored shot: %+v", stored)
	}

	rr = e.do(http.MethodGet, "/outstanding", "")
	if !strings.Contains(rr.Body.String(), `"ids":["gal-1"]`) || !strings.Contains(rr.Body.String(), `"pollActive":true`) {
		t.Fatalf("unexpected outstanding body: %s", rr.Body.String())
	}
}

func TestHTTP_Generate_400_WhenNothingSelected(t *testing.T) {
	e := newEnv()
	addShot(t, e, `{"shots":[{"imageUrl":"https://cdn.example.com/a.png","prompt":"pan","includeInBatch":false}]}`)

	rr := e.do(http.MethodPost, "/generate", `{"model":"seedance-lite"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
	}

	rr = e.do(http.MethodPost, "/generate", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without model, got %d", rr.Code)
	}
}

func TestHTTP_Retry_StatusCodes(t *testing.T) {
	e := newEnv()
	e.st.Add(entity.ShotConfig{
		ID:       "s1",
		ImageURL: "https://cdn.example.com/a.png",
		Prompt:   "pan",
		Results: []entity.ResultRecord{
			{ID: "r-pending", Status: entity.StatusPending},
			{ID: "r-failed", Status: entity.StatusFailed, Error: "boom"},
		},
	})

	rr := e.do(http.MethodPost, "/shots/s1/results/r-pending/retry", `{"model":"seedance-lite"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d, body=%s", rr.Code, rr.Body.String())
	}

	rr = e.do(http.MethodPost, "/shots/s1/results/missing/retry", `{"model":"seedance-lite"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = e.do(http.MethodPost, "/shots/s1/results/r-failed/retry", `{"model":"seedance-lite"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	stored, _ := e.st.Get("s1")
	if stored.Results[1].ID != "gal-1" || stored.Results[1].Status != entity.StatusProcessing {
		t.Fatalf("expected retried record in place, got %+v", stored.Results)
	}
}

func TestHTTP_PatchAndDelete(t *testing.T) {
	e := newEnv()
	shot := addShot(t, e, `{"shots":[{"imageUrl":"https://cdn.example.com/a.png","prompt":"pan"}]}`)

	rr := e.do(http.MethodPatch, "/shots/"+shot.ID, `{"prompt":"tilt","includeInBatch":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	stored, _ := e.st.Get(shot.ID)
	if stored.Prompt != "tilt" || stored.IncludeInBatch {
		t.Fatalf("patch not applied: %+v", stored)
	}

	rr = e.do(http.MethodDelete, "/shots/"+shot.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = e.do(http.MethodDelete, "/shots/"+shot.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestHTTP_StatusWebhook_RelaysToFeed(t *testing.T) {
	e := newEnv()

	rr := e.do(http.MethodPost, "/webhooks/status", `{"jobId":"gal-9","outputUrl":"https://x/y.mp4"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d, body=%s", rr.Code, rr.Body.String())
	}
	if len(e.publisher.published) != 1 || e.publisher.published[0].JobID != "gal-9" {
		t.Fatalf("unexpected published: %+v", e.publisher.published)
	}

	rr = e.do(http.MethodPost, "/webhooks/status", `{"outputUrl":"https://x/y.mp4"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without jobId, got %d", rr.Code)
	}

	e.publisher.err = errors.New("redis down")
	rr = e.do(http.MethodPost, "/webhooks/status", `{"jobId":"gal-9","status":"failed"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestHTTP_UploadAsset_ReturnsBlobRef(t *testing.T) {
	e := newEnv()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "hero.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Ref  string `json:"ref"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.HasPrefix(resp.Ref, "blob:") || resp.Name != "hero.png" {
		t.Fatalf("unexpected asset response: %+v", resp)
	}
	if _, ok := e.blobs.Get(resp.Ref); !ok {
		t.Fatalf("blob %s not cached", resp.Ref)
	}
}

func TestHTTP_ListModels(t *testing.T) {
	e := newEnv()
	rr := e.do(http.MethodGet, "/models", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"id":"seedance-lite"`) {
		t.Fatalf("expected seedance-lite in catalog, body=%s", rr.Body.String())
	}
}
