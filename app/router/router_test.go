package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dressing-virtuel/app/controller"
)

func TestRoutes(t *testing.T) {
	mux := http.NewServeMux()
	SetupRoutes(mux, &Controllers{
		Submission: controller.NewSubmissionController(nil, nil),
		Suggestion: controller.NewSuggestionController(nil),
		Garment:    controller.NewGarmentController(nil, nil, nil),
		Client:     controller.NewClientController(nil),
		Lookbook:   controller.NewLookbookController(nil, nil),
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/wardrobe/suggestions", http.StatusBadRequest},
		{http.MethodGet, "/wardrobe/garments/x/image", http.StatusBadRequest},
		{http.MethodPut, "/clients/abc/faceid", http.StatusBadRequest},
		{http.MethodPost, "/wardrobe/suggestions", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("")))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
