package migration

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	removeShimTemplateConstant = "unable to remove %s: %w"
	shimRemovedMessageConstant = "Removed generated shim"
	logFieldShimConstant       = "shim"
)

// RemoveShims deletes every file matching pattern that matches none of the keep globs and
// returns the root-relative paths it removed.
func RemoveShims(logger *zap.Logger, root string, pattern string, keep []string) ([]string, error) {
	candidates, matchError := matchFiles(root, pattern, keep)
	if matchError != nil {
		return nil, matchError
	}

	removed := make([]string, 0, len(candidates))
	for _, relativePath := range candidates {
		if removeError := os.Remove(absolutePath(root, relativePath)); removeError != nil {
			return removed, fmt.Errorf(removeShimTemplateConstant, relativePath, removeError)
		}
		logger.Info(shimRemovedMessageConstant, zap.String(logFieldShimConstant, relativePath))
		removed = append(removed, relativePath)
	}
	return removed, nil
}
