package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

const globErrorTemplateConstant = "unable to match %q under %s: %w"

// matchFiles lists root-relative, slash separated regular files matching pattern that match
// none of the exclusion lists, in lexical order.
func matchFiles(root string, pattern string, exclusions ...[]string) ([]string, error) {
	matches, globError := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if globError != nil {
		return nil, fmt.Errorf(globErrorTemplateConstant, pattern, root, globError)
	}

	selected := make([]string, 0, len(matches))
	for _, match := range matches {
		excluded := false
		for _, exclusion := range exclusions {
			if matchesAny(match, exclusion) {
				excluded = true
				break
			}
		}
		if !excluded {
			selected = append(selected, match)
		}
	}
	sort.Strings(selected)
	return selected, nil
}

func matchesAny(relativePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, relativePath); matched {
			return true
		}
	}
	return false
}

func absolutePath(root string, relativePath string) string {
	return filepath.Join(root, filepath.FromSlash(relativePath))
}
