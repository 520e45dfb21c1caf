package models

// Sub-categories the suggestion engine pairs together
const (
	SubCategoryTopwear    = "Topwear"
	SubCategoryBottomwear = "Bottomwear"
)

// RGB is a color triple parsed from the colors table
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Garment represents a catalogue row written by the pipeline
type Garment struct {
	ID            int    `json:"id"`
	Path          string `json:"path"`
	ClientID      int    `json:"id_client"`
	GenderID      int    `json:"id_gender"`
	SeasonID      int    `json:"id_season"`
	ColorID       int    `json:"id_color"`
	UsageTypeID   int    `json:"id_usagetype"`
	ArticleTypeID int    `json:"id_articletype"`
}

// GarmentDetail is a garment joined with its taxonomy names
type GarmentDetail struct {
	ID          int    `json:"id"`
	Path        string `json:"path"`
	ClientID    int    `json:"id_client"`
	Gender      string `json:"gender"`
	Color       string `json:"color"`
	ColorRGB    RGB    `json:"color_rgb"`
	Season      string `json:"season"`
	ArticleType string `json:"article"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	UsageType   string `json:"usage_type"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
