package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/onionwatch/internal/model"
)

// Archive stores raw page markup on disk for later re-analysis.
// Findings hold only a snippet; when extraction patterns improve, the
// archive lets old pages be re-scanned without re-crawling them.
type Archive struct {
	dir string
}

// NewArchive creates an archive rooted at dir, creating it if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Dir returns the archive root directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Save writes the raw markup of a fetch result to the archive and
// returns the file path. The filename combines the fetch timestamp
// with a hash of the URL, so repeated observations of the same page
// archive side by side instead of overwriting.
func (a *Archive) Save(res *model.FetchResult) (string, error) {
	if res.RawMarkup == "" {
		return "", nil
	}

	sum := sha256.Sum256([]byte(res.URL))
	name := fmt.Sprintf("%s_%s.html",
		res.FetchedAt.UTC().Format("20060102T150405"),
		hex.EncodeToString(sum[:8]))

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, []byte(res.RawMarkup), 0600); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", res.URL, err)
	}
	return path, nil
}
