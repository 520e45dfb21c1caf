package models

// SuggestionRequest holds the parameters of an outfit suggestion.
// Seasons wins over Temperature; Latitude/Longitude are used to look the
// temperature up when neither is given.
type SuggestionRequest struct {
	ClientID       int      `json:"client_id" validate:"required,gt=0"`
	Seasons        []string `json:"season,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Date           string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UsageType      string   `json:"usage_type,omitempty"`
	AnchorTopID    *int     `json:"id_top,omitempty" validate:"omitempty,gt=0"`
	AnchorBottomID *int     `json:"id_bottom,omitempty" validate:"omitempty,gt=0"`
	Count          int      `json:"n_suggestions" validate:"gte=0"`
	Mode           string   `json:"mode,omitempty" validate:"omitempty,oneof=complementary analogous triadic"`
}

// MatchResult is one top/bottom pairing
type MatchResult struct {
	IDTop    int `json:"id_top"`
	IDBottom int `json:"id_bottom"`
}

// SuggestionResult is the response of a suggestion request
type SuggestionResult struct {
	ClientID    int           `json:"client_id"`
	Temperature *float64      `json:"temperature,omitempty"`
	Seasons     []string      `json:"seasons"`
	Mode        string        `json:"mode"`
	Matches     []MatchResult `json:"matches"`
}
