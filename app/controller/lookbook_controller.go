package controller

import (
	"context"
	"net/http"
	"net/url"

	"dressing-virtuel/models"
	"dressing-virtuel/service"
)

// LookbookRenderer renders suggestion results
type LookbookRenderer interface {
	Build(ctx context.Context, result *models.SuggestionResult) (*service.Lookbook, error)
	RenderHTML(book *service.Lookbook) (string, error)
	RenderPDF(ctx context.Context, query url.Values) ([]byte, error)
}

// LookbookController handles HTTP requests for printable lookbooks
type LookbookController struct {
	suggester Suggester
	renderer  LookbookRenderer
}

// NewLookbookController creates a new LookbookController
func NewLookbookController(suggester Suggester, renderer LookbookRenderer) *LookbookController {
	return &LookbookController{suggester: suggester, renderer: renderer}
}

// RenderLookbook handles GET /wardrobe/lookbook with the suggestion query params
func (c *LookbookController) RenderLookbook(w http.ResponseWriter, r *http.Request) {
	req, err := parseSuggestionRequest(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := c.suggester.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, "lookbook", err)
		return
	}

	book, err := c.renderer.Build(r.Context(), result)
	if err != nil {
		writeError(w, "lookbook", err)
		return
	}
	html, err := c.renderer.RenderHTML(book)
	if err != nil {
		writeError(w, "lookbook", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// DownloadLookbookPDF handles GET /wardrobe/lookbook.pdf
func (c *LookbookController) DownloadLookbookPDF(w http.ResponseWriter, r *http.Request) {
	if _, err := parseSuggestionRequest(r.URL.Query()); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	pdf, err := c.renderer.RenderPDF(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, "lookbook_pdf", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="lookbook.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
