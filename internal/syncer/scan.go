package syncer

import (
	"fmt"
	"os"

	"ytsync/internal/textutil"
)

// ScanLocation returns the sanitized names of the files currently in
// dir. The snapshot is taken once per run; files fetched later in the
// same run are not re-scanned. Names pass through the same sanitizer as
// remote titles so comparisons hold regardless of how entries were
// created. Subdirectories are ignored: only a file can satisfy an item.
func ScanLocation(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names[textutil.SanitizeFileName(entry.Name())] = struct{}{}
	}
	return names, nil
}
