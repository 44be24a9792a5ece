package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/temirov/scssmigrate/internal/stylesheet"
	"github.com/temirov/scssmigrate/internal/textfile"
)

const (
	stylesheetPatternConstant      = "**/*" + stylesheet.StylesheetExtension
	readStylesheetTemplateConstant = "unable to read %s: %w"
	inspectShimTemplateConstant    = "unable to inspect shim %s: %w"
	statementSeparatorConstant     = "\n"
)

// BuildImportMap records the legacy import statements of every stylesheet under root that is
// not ignored, keyed by absolute path. Statements importing excludedNamespace are left out and
// files without statements are not recorded.
func BuildImportMap(root string, ignore []string, excludedNamespace string) (ImportMap, error) {
	stylesheets, matchError := matchFiles(root, stylesheetPatternConstant, ignore)
	if matchError != nil {
		return nil, matchError
	}

	importMap := make(ImportMap)
	for _, relativePath := range stylesheets {
		stylesheetPath := absolutePath(root, relativePath)
		content, readError := os.ReadFile(stylesheetPath)
		if readError != nil {
			return nil, fmt.Errorf(readStylesheetTemplateConstant, stylesheetPath, readError)
		}

		statements := stylesheet.ExtractLegacyImports(string(content), excludedNamespace)
		if len(statements) == 0 {
			continue
		}
		importMap[stylesheetPath] = statements
	}
	return importMap, nil
}

// ReinsertImports appends the recorded statements of every stylesheet to its surviving shim,
// one per line, so the shim keeps exposing what the stylesheet used to import. Stylesheets
// without a shim are skipped. It returns the updated shim paths in lexical order.
func ReinsertImports(rewriter *textfile.Rewriter, importMap ImportMap) ([]string, error) {
	stylesheetPaths := make([]string, 0, len(importMap))
	for stylesheetPath := range importMap {
		stylesheetPaths = append(stylesheetPaths, stylesheetPath)
	}
	sort.Strings(stylesheetPaths)

	updatedShims := make([]string, 0)
	for _, stylesheetPath := range stylesheetPaths {
		shimPath := stylesheet.ShimPath(stylesheetPath)
		if len(shimPath) == 0 {
			continue
		}

		if _, statError := os.Stat(shimPath); statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				continue
			}
			return updatedShims, fmt.Errorf(inspectShimTemplateConstant, shimPath, statError)
		}

		statements := importMap[stylesheetPath]
		change, rewriteError := rewriter.Rewrite(shimPath, func(content string) (string, error) {
			return AppendStatements(content, statements), nil
		})
		if rewriteError != nil {
			return updatedShims, rewriteError
		}
		if change.Updated {
			updatedShims = append(updatedShims, shimPath)
		}
	}
	return updatedShims, nil
}

// AppendStatements strips trailing newlines from content and appends the statements, each on
// its own line, followed by a final newline.
func AppendStatements(content string, statements []string) string {
	if len(statements) == 0 {
		return content
	}
	return strings.TrimRight(content, statementSeparatorConstant) + statementSeparatorConstant +
		strings.Join(statements, statementSeparatorConstant) + statementSeparatorConstant
}
