package stylesheet

import (
	"regexp"
	"strings"
)

const (
	importStatementPatternConstant   = `^\s*@(use|forward|import)\b[^;]*;\s*$`
	legacyImportPatternConstant      = `(?m)^[ \t]*(@import\s+[^;]+;)`
	quotedTargetPatternConstant      = `['"]([^'"]+)['"]`
	moduleUseKeywordConstant         = "use"
	moduleForwardKeywordConstant     = "forward"
	legacyImportKeywordConstant      = "import"
	lineSeparatorConstant            = "\n"
	importStatementKeywordGroupIndex = 1
)

// ImportKind classifies a line by the import mechanism it uses.
type ImportKind int

// Import kinds. Module statements sort before legacy statements.
const (
	ImportKindNone ImportKind = iota
	ImportKindModule
	ImportKindLegacy
)

var (
	importStatementPattern = regexp.MustCompile(importStatementPatternConstant)
	legacyImportPattern    = regexp.MustCompile(legacyImportPatternConstant)
	quotedTargetPattern    = regexp.MustCompile(quotedTargetPatternConstant)
)

// ClassifyImportLine reports whether the line holds a complete single-line @use, @forward or
// @import statement. Statements spanning several lines classify as ImportKindNone.
func ClassifyImportLine(line string) ImportKind {
	submatches := importStatementPattern.FindStringSubmatch(line)
	if submatches == nil {
		return ImportKindNone
	}
	switch submatches[importStatementKeywordGroupIndex] {
	case moduleUseKeywordConstant, moduleForwardKeywordConstant:
		return ImportKindModule
	case legacyImportKeywordConstant:
		return ImportKindLegacy
	default:
		return ImportKindNone
	}
}

// ExtractLegacyImports returns every @import statement of the content in source order, verbatim
// apart from leading indentation. Statements whose targets live in excludedNamespace are skipped;
// an empty namespace excludes nothing.
func ExtractLegacyImports(content string, excludedNamespace string) []string {
	matches := legacyImportPattern.FindAllStringSubmatch(content, -1)
	statements := make([]string, 0, len(matches))
	for _, match := range matches {
		statement := match[1]
		if targetsNamespace(statement, excludedNamespace) {
			continue
		}
		statements = append(statements, statement)
	}
	return statements
}

// ImportTargets lists the quoted targets of a statement, e.g. "a" and "b" for @import 'a', 'b';.
func ImportTargets(statement string) []string {
	matches := quotedTargetPattern.FindAllStringSubmatch(statement, -1)
	targets := make([]string, 0, len(matches))
	for _, match := range matches {
		targets = append(targets, match[1])
	}
	return targets
}

func targetsNamespace(statement string, namespace string) bool {
	if len(namespace) == 0 {
		return false
	}
	for _, target := range ImportTargets(statement) {
		if strings.HasPrefix(target, namespace) {
			return true
		}
	}
	return false
}
