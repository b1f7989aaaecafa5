package files

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// StorageName derives the on-disk filename for an upload:
// "{millisecond-timestamp}-{basename-without-extension}{extension}".
// The timestamp component keeps concurrent uploads of identically
// named files apart; the derived name never changes after creation.
func StorageName(originalName string, at time.Time) string {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), name, ext)
}
