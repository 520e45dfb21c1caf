package utils

import (
	"fmt"
	"regexp"
	"strconv"

	"dressing-virtuel/models"
)

var rgbComponentRegex = regexp.MustCompile(`-?\d+`)

// ParseRGB parses the string form of a color stored in the colors table.
// Accepted shapes: "(200, 20, 20)", "[200,20,20]", "rgb(200 20 20)".
func ParseRGB(value string) (models.RGB, error) {
	parts := rgbComponentRegex.FindAllString(value, -1)
	if len(parts) != 3 {
		return models.RGB{}, fmt.Errorf("invalid rgb %q: expected 3 components, got %d", value, len(parts))
	}

	var components [3]uint8
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return models.RGB{}, fmt.Errorf("invalid rgb component %q: %w", part, err)
		}
		if n < 0 || n > 255 {
			return models.RGB{}, fmt.Errorf("invalid rgb %q: component %d out of range 0-255", value, n)
		}
		components[i] = uint8(n)
	}

	return models.RGB{R: components[0], G: components[1], B: components[2]}, nil
}
