// Package staging materializes the known-faces corpus into a transient
// filesystem directory consumed by the external recognition worker.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/core/domain"
)

// FaceSource is the read side of the corpus: every user with a stored face image.
type FaceSource interface {
	FindAllFaceAssets(ctx context.Context) ([]domain.FaceAsset, error)
}

// imageExtensions limits cleanup to staged image files. Anything else in the
// directory is left alone.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Corpus owns the staging directory. Refresh and Purge are mutually
// exclusive so a worker never reads a half-written corpus while a purge or
// concurrent refresh is tearing it down.
type Corpus struct {
	mu     sync.Mutex
	dir    string
	source FaceSource
	log    zerolog.Logger
}

func NewCorpus(dir string, source FaceSource, log zerolog.Logger) *Corpus {
	return &Corpus{dir: dir, source: source, log: log}
}

// Dir returns the staging directory path handed to spawned workers.
func (c *Corpus) Dir() string {
	return c.dir
}

// Refresh clears stale staged images and writes one <username>.jpg per face
// asset with non-empty bytes. Individual file-write failures are logged and
// skipped; only directory-level failures are returned.
func (c *Corpus) Refresh(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return 0, fmt.Errorf("staging: create directory: %w", err)
	}
	if err := c.removeImages(); err != nil {
		return 0, err
	}

	assets, err := c.source.FindAllFaceAssets(ctx)
	if err != nil {
		return 0, fmt.Errorf("staging: load face assets: %w", err)
	}

	staged := 0
	for _, asset := range assets {
		if len(asset.Image) == 0 {
			continue
		}
		path := filepath.Join(c.dir, asset.Username+".jpg")
		if err := os.WriteFile(path, asset.Image, 0o644); err != nil {
			// Best effort: one bad write must not starve the rest of the corpus.
			c.log.Warn().Err(err).Str("username", asset.Username).Msg("failed to stage face image")
			continue
		}
		staged++
	}

	c.log.Info().Int("staged", staged).Str("dir", c.dir).Msg("face corpus refreshed")
	return staged, nil
}

// Purge deletes every staged image without repopulating. The directory
// itself is left in place.
func (c *Corpus) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}
	return c.removeImages()
}

// removeImages deletes image files directly inside the staging directory.
// Subdirectories and non-image files are never touched. Individual delete
// failures are logged and the sweep continues. Callers must hold mu.
func (c *Corpus) removeImages() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("staging: read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to delete staged image")
		}
	}
	return nil
}

func isImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
