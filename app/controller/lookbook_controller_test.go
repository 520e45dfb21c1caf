package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dressing-virtuel/models"
	"dressing-virtuel/service"
)

type fakeRenderer struct {
	pdfQuery url.Values
}

func (f *fakeRenderer) Build(ctx context.Context, result *models.SuggestionResult) (*service.Lookbook, error) {
	return &service.Lookbook{ClientID: result.ClientID, Mode: result.Mode}, nil
}

func (f *fakeRenderer) RenderHTML(book *service.Lookbook) (string, error) {
	return "<html>" + book.Mode + "</html>", nil
}

func (f *fakeRenderer) RenderPDF(ctx context.Context, query url.Values) ([]byte, error) {
	f.pdfQuery = query
	return []byte("%PDF-1.4"), nil
}

func TestRenderLookbook(t *testing.T) {
	suggester := &fakeSuggester{result: &models.SuggestionResult{ClientID: 42, Mode: "analogous"}}
	c := NewLookbookController(suggester, &fakeRenderer{})

	rec := httptest.NewRecorder()
	c.RenderLookbook(rec, httptest.NewRequest(http.MethodGet, "/wardrobe/lookbook?client_id=42&season=Summer&mode=analogous", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") || rec.Body.String() != "<html>analogous</html>" {
		t.Errorf("response = %q %q", rec.Header().Get("Content-Type"), rec.Body)
	}
	if suggester.got.Mode != "analogous" {
		t.Errorf("suggester got mode %q", suggester.got.Mode)
	}
}

func TestDownloadLookbookPDF(t *testing.T) {
	renderer := &fakeRenderer{}
	c := NewLookbookController(&fakeSuggester{}, renderer)

	rec := httptest.NewRecorder()
	c.DownloadLookbookPDF(rec, httptest.NewRequest(http.MethodGet, "/wardrobe/lookbook.pdf?client_id=42&season=Summer", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("status = %d, Content-Type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if renderer.pdfQuery.Get("season") != "Summer" {
		t.Errorf("PDF query = %v", renderer.pdfQuery)
	}

	rec = httptest.NewRecorder()
	c.DownloadLookbookPDF(rec, httptest.NewRequest(http.MethodGet, "/wardrobe/lookbook.pdf?client_id=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid query status = %d", rec.Code)
	}
}
