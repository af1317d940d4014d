package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Routes(h *Handler, allowedOrigins ...string) http.Handler {
	r := chi.NewRouter()

	// базовые middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// наш логгер (после RequestID)
	r.Use(RequestLogger)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/models", h.ListModels)
	r.Post("/assets", h.UploadAsset)

	r.Route("/shots", func(r chi.Router) {
		r.Get("/", h.ListShots)
		r.Post("/", h.AddShots)
		r.Post("/deselect", h.DeselectAll)
		r.Get("/{id}", h.GetShot)
		r.Patch("/{id}", h.UpdateShot)
		r.Delete("/{id}", h.DeleteShot)
		r.Delete("/{id}/results/{resultId}", h.DeleteResult)
		r.Post("/{id}/results/{resultId}/retry", h.RetryResult)
	})

	r.Post("/generate", h.Generate)
	r.Get("/outstanding", h.Outstanding)
	r.Post("/webhooks/status", h.StatusWebhook)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
