package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateImageName returns a unique file name like image_1717171717_3f9a1c.jpg
func GenerateImageName() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("image_%d_%s.jpg", time.Now().Unix(), random)
}
