package service

import (
	"context"
	"strings"
	"testing"

	"dressing-virtuel/models"
)

func TestBuildAndRenderLookbook(t *testing.T) {
	garments := &fakeGarments{catalogue: []models.GarmentDetail{
		garment(10, models.SubCategoryTopwear, "Summer", "Casual", rgbRed),
		garment(20, models.SubCategoryBottomwear, "Summer", "Casual", rgbCyan),
		{ID: 30, ClientID: 7, SubCategory: models.SubCategoryBottomwear},
	}}
	s := NewLookbookService(garments, "http://localhost:8080/", "")

	temperature := 21.0
	result := &models.SuggestionResult{
		ClientID:    42,
		Temperature: &temperature,
		Seasons:     []string{"Spring", "Summer"},
		Mode:        "complementary",
		Matches: []models.MatchResult{
			{IDTop: 10, IDBottom: 20},
			{IDTop: 10, IDBottom: 30}, // another client's garment
		},
	}

	book, err := s.Build(context.Background(), result)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(book.Outfits) != 1 {
		t.Fatalf("Build() outfits = %d, want 1", len(book.Outfits))
	}
	if got := book.Outfits[0].Top.ImageURL; got != "/wardrobe/garments/10/image?client_id=42&size=thumb" {
		t.Errorf("top ImageURL = %q", got)
	}

	html, err := s.RenderHTML(book)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	for _, want := range []string{
		"Spring, Summer",
		"21.0",
		"complementary",
		`src="/wardrobe/garments/20/image?client_id=42&amp;size=thumb"`,
		"#10",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("RenderHTML() missing %q", want)
		}
	}
}

func TestRenderLookbookWithoutTemperature(t *testing.T) {
	s := NewLookbookService(&fakeGarments{}, "", "")
	html, err := s.RenderHTML(&Lookbook{ClientID: 3, Seasons: []string{"Winter"}, Mode: "analogous"})
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if strings.Contains(html, "&deg;C") {
		t.Error("temperature rendered without a value")
	}
}
