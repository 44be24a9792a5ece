package migration

import (
	"github.com/temirov/scssmigrate/internal/stylesheet"
	"github.com/temirov/scssmigrate/internal/textfile"
)

// HideImports comments out the codec's namespace imports in every matching file so the
// migrator never tries to resolve them. It returns the root-relative paths it changed.
func HideImports(rewriter *textfile.Rewriter, root string, pattern string, exclude []string, codec stylesheet.NamespaceCodec) ([]string, error) {
	return rewriteMatches(rewriter, root, pattern, exclude, codec.Encode)
}

// RestoreImports removes the codec's marker and moves module imports ahead of legacy ones
// in every matching file. It returns the root-relative paths it changed.
func RestoreImports(rewriter *textfile.Rewriter, root string, pattern string, exclude []string, codec stylesheet.NamespaceCodec) ([]string, error) {
	return rewriteMatches(rewriter, root, pattern, exclude, func(content string) (string, error) {
		decoded, decodeError := codec.Decode(content)
		if decodeError != nil {
			return "", decodeError
		}
		return stylesheet.SortModuleImportsFirst(decoded), nil
	})
}

func rewriteMatches(rewriter *textfile.Rewriter, root string, pattern string, exclude []string, transform textfile.Transform) ([]string, error) {
	matches, matchError := matchFiles(root, pattern, exclude)
	if matchError != nil {
		return nil, matchError
	}

	changed := make([]string, 0)
	for _, relativePath := range matches {
		change, rewriteError := rewriter.Rewrite(absolutePath(root, relativePath), transform)
		if rewriteError != nil {
			return changed, rewriteError
		}
		if change.Updated {
			changed = append(changed, relativePath)
		}
	}
	return changed, nil
}
