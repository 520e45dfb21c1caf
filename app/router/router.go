package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dressing-virtuel/app/controller"
	"dressing-virtuel/metrics"
)

type Controllers struct {
	Submission *controller.SubmissionController
	Suggestion *controller.SuggestionController
	Garment    *controller.GarmentController
	Client     *controller.ClientController
	Lookbook   *controller.LookbookController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	mux.HandleFunc("GET /ping", pingHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Submissions
	handle(mux, "POST /wardrobe/submissions", "submit", controllers.Submission.Submit)
	handle(mux, "POST /wardrobe/submissions/drive", "submit_drive", controllers.Submission.SubmitFromDrive)

	// Suggestions
	handle(mux, "GET /wardrobe/suggestions", "suggestions", controllers.Suggestion.GetSuggestions)

	// Catalogue
	handle(mux, "GET /wardrobe/garments", "garments", controllers.Garment.ListGarments)
	handle(mux, "GET /wardrobe/garments/{id}/image", "garment_image", controllers.Garment.GetGarmentImage)
	handle(mux, "GET /wardrobe/taxonomy", "taxonomy", controllers.Garment.GetTaxonomy)

	// Clients
	handle(mux, "PUT /clients/{id}/faceid", "faceid", controllers.Client.UpdateFaceID)

	// Lookbook
	handle(mux, "GET /wardrobe/lookbook", "lookbook", controllers.Lookbook.RenderLookbook)
	handle(mux, "GET /wardrobe/lookbook.pdf", "lookbook_pdf", controllers.Lookbook.DownloadLookbookPDF)
}

func handle(mux *http.ServeMux, pattern, name string, h http.HandlerFunc) {
	mux.Handle(pattern, instrument(name, h))
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records latency and error responses per route
func instrument(name string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.HTTPRequestDuration.WithLabelValues(name, r.Method).Observe(time.Since(start).Seconds())
		if rec.status >= 400 {
			metrics.HTTPErrors.WithLabelValues(name, r.Method, strconv.Itoa(rec.status)).Inc()
		}
	})
}
