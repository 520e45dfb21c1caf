package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"dressing-virtuel/models"
)

// Mode is a color-harmony rule
type Mode string

const (
	ModeComplementary Mode = "complementary"
	ModeAnalogous     Mode = "analogous"
	ModeTriadic       Mode = "triadic"
)

// HueTolerance is the maximum distance, in normalized hue units, between a
// candidate hue and a target hue
const HueTolerance = 0.05

const hueEpsilon = 1e-9

// neutralColors always match, whatever the anchor hue
var neutralColors = map[models.RGB]string{
	{R: 0, G: 0, B: 0}:       "black",
	{R: 255, G: 255, B: 255}: "white",
	{R: 128, G: 128, B: 128}: "gray",
	{R: 192, G: 192, B: 192}: "silver", // light navy/silver; a blue navy is matched by hue
	{R: 245, G: 245, B: 220}: "beige",
}

// ErrUnknownMode is returned for harmony mode names other than complementary, analogous and triadic
var ErrUnknownMode = errors.New("unknown harmony mode")

// ParseMode parses a harmony mode name. An empty name is complementary.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeComplementary, nil
	case ModeComplementary, ModeAnalogous, ModeTriadic:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMode, name)
	}
}

// Hue returns the HSV hue of c in [0, 1)
func Hue(c models.RGB) float64 {
	h, _, _ := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()
	return wrap(h / 360.0)
}

// TargetHues returns the hues that harmonize with h under mode
func TargetHues(h float64, mode Mode) []float64 {
	switch mode {
	case ModeAnalogous:
		return []float64{wrap(h - 0.1), wrap(h + 0.1)}
	case ModeTriadic:
		return []float64{wrap(h + 1.0/3.0), wrap(h + 2.0/3.0)}
	default:
		return []float64{wrap(h + 0.5)}
	}
}

// HueDistance is the circular distance between two normalized hues
func HueDistance(a, b float64) float64 {
	d := math.Abs(wrap(a) - wrap(b))
	return math.Min(d, 1-d)
}

// IsNeutral reports whether c is one of the neutral colors
func IsNeutral(c models.RGB) bool {
	_, ok := neutralColors[c]
	return ok
}

// Score reports whether candidate harmonizes with anchor and, if so, its
// distance to the closest target hue. Neutral candidates score 0.
func Score(anchor, candidate models.RGB, mode Mode) (float64, bool) {
	if IsNeutral(candidate) {
		return 0, true
	}

	hue := Hue(candidate)
	best := math.Inf(1)
	for _, target := range TargetHues(Hue(anchor), mode) {
		if d := HueDistance(hue, target); d < best {
			best = d
		}
	}
	if best <= HueTolerance+hueEpsilon {
		return best, true
	}
	return 0, false
}

// Candidate is a garment considered for pairing
type Candidate struct {
	ID    int
	Color models.RGB
}

// Rank filters candidates that harmonize with anchor and orders them:
// chromatic matches by hue distance, then neutrals, ties by lowest id.
func Rank(anchor models.RGB, candidates []Candidate, mode Mode) []Candidate {
	type scored struct {
		Candidate
		neutral  bool
		distance float64
	}

	matches := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d, ok := Score(anchor, c.Color, mode)
		if !ok {
			continue
		}
		matches = append(matches, scored{Candidate: c, neutral: IsNeutral(c.Color), distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.neutral != b.neutral {
			return !a.neutral
		}
		if math.Abs(a.distance-b.distance) > hueEpsilon {
			return a.distance < b.distance
		}
		return a.ID < b.ID
	})

	ranked := make([]Candidate, len(matches))
	for i, m := range matches {
		ranked[i] = m.Candidate
	}
	return ranked
}

func wrap(h float64) float64 {
	h = math.Mod(h, 1.0)
	if h < 0 {
		h += 1.0
	}
	return h
}
