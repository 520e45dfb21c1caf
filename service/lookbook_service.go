package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"dressing-virtuel/logging"
	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

//go:embed templates/lookbook.html
var lookbookFS embed.FS

var lookbookTemplate = template.Must(template.New("lookbook.html").Funcs(template.FuncMap{
	"join":  strings.Join,
	"deref": func(f *float64) float64 { return *f },
}).ParseFS(lookbookFS, "templates/lookbook.html"))

// Outfit is one suggested pairing with its garment details
type Outfit struct {
	Top    models.GarmentDetail
	Bottom models.GarmentDetail
}

// Lookbook is the data rendered by the lookbook template
type Lookbook struct {
	ClientID    int
	Seasons     []string
	Mode        string
	Temperature *float64
	Outfits     []Outfit
}

// LookbookService renders suggestion results as HTML and PDF
type LookbookService struct {
	garments   repository.GarmentRepositoryInterface
	baseURL    string
	chromePath string
}

// NewLookbookService creates a new LookbookService
func NewLookbookService(garments repository.GarmentRepositoryInterface, baseURL, chromePath string) *LookbookService {
	return &LookbookService{
		garments:   garments,
		baseURL:    strings.TrimRight(baseURL, "/"),
		chromePath: chromePath,
	}
}

// Build joins a suggestion result with the garment details. Pairs whose
// garments disappeared from the catalogue are left out.
func (s *LookbookService) Build(ctx context.Context, result *models.SuggestionResult) (*Lookbook, error) {
	catalogue, err := s.garments.GetByClient(ctx, result.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	byID := make(map[int]models.GarmentDetail, len(catalogue))
	for _, g := range catalogue {
		g.ImageURL = fmt.Sprintf("/wardrobe/garments/%d/image?client_id=%d&size=thumb", g.ID, g.ClientID)
		byID[g.ID] = g
	}

	book := &Lookbook{
		ClientID:    result.ClientID,
		Seasons:     result.Seasons,
		Mode:        result.Mode,
		Temperature: result.Temperature,
	}
	for _, m := range result.Matches {
		top, okTop := byID[m.IDTop]
		bottom, okBottom := byID[m.IDBottom]
		if !okTop || !okBottom {
			continue
		}
		book.Outfits = append(book.Outfits, Outfit{Top: top, Bottom: bottom})
	}
	return book, nil
}

// RenderHTML renders a lookbook page
func (s *LookbookService) RenderHTML(book *Lookbook) (string, error) {
	var buf bytes.Buffer
	if err := lookbookTemplate.Execute(&buf, book); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF prints the HTML lookbook served at /wardrobe/lookbook with the given query
func (s *LookbookService) RenderPDF(ctx context.Context, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if chromePath := s.detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := s.baseURL + "/wardrobe/lookbook?" + query.Encode()
	logging.Debug().Str("url", renderURL).Msg("🖨️  Printing lookbook")

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`Promise.all(Array.from(document.images).map(img => img.complete ? null : new Promise(r => { img.onload = img.onerror = r; })))`, nil,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// detectChromePath returns the configured browser, or the first common install found
func (s *LookbookService) detectChromePath() string {
	candidates := []string{
		s.chromePath,
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
