package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTempID returns a client-side placeholder id: temp_<unix ms>_<9 chars>.
func GenerateTempID() string {
	return fmt.Sprintf("temp_%d_%s", time.Now().UnixMilli(), compactUUID()[:9])
}

// NewBusinessID returns a human-facing identifier such as SALE-1A2B3C4D.
func NewBusinessID(prefix string) string {
	return strings.ToUpper(prefix) + "-" + strings.ToUpper(compactUUID()[:8])
}

func compactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
