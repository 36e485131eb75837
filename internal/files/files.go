// Package files handles input discovery and the post-run archive step. It is
// file-organization plumbing around the pipeline, not part of the
// reconciliation logic.
package files

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Discover returns the workbooks in dir whose base name contains the token,
// matching the pattern *<token>*.xlsx case-sensitively. Results are sorted by
// file name. Files already moved into an archive subfolder are not matched.
func Discover(dir, token string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+token+"*.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("discover %q in %s: %w", token, dir, err)
	}
	return matches, nil
}

// Archive moves the given files into a fresh folder named folderName under
// dir, creating it first. A file that fails to move is logged and skipped;
// only a failure to create the folder itself is an error.
func Archive(log *zap.Logger, dir, folderName string, paths []string) (string, error) {
	dest := filepath.Join(dir, folderName)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder %s: %w", dest, err)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			log.Warn("archive: file not found", zap.String("file", p))
			continue
		}
		target := filepath.Join(dest, filepath.Base(p))
		if err := os.Rename(p, target); err != nil {
			log.Warn("archive: move failed", zap.String("file", p), zap.Error(err))
			continue
		}
		log.Info("archived file", zap.String("file", p), zap.String("dest", target))
	}
	return dest, nil
}
