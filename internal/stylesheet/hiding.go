package stylesheet

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultHiddenImportMarker turns a hidden statement into a line comment.
	DefaultHiddenImportMarker = "//🚀 "

	hiddenStatementPatternTemplateConstant = `(?m)^[ \t]*@(?:use|forward|import)\s+[^;\n]*?['"]%s(?:/|['"])`
	emptyNamespaceMessageConstant          = "namespace must not be empty"
	emptyMarkerMessageConstant             = "marker must not be empty"
	markerAlreadyPresentTemplateConstant   = "content already contains the marker %q"
)

var (
	errEmptyNamespace = errors.New(emptyNamespaceMessageConstant)
	errEmptyMarker    = errors.New(emptyMarkerMessageConstant)
)

// NamespaceCodec comments out and restores import statements targeting one namespace, so an
// external tool that cannot resolve that namespace never sees them. A @use, @forward or @import
// line is hidden when any of its quoted targets is the namespace or lies below it, so
// `@import 'a', '@material/b';` is hidden as a whole. Only the first line of a statement is
// marked; statements spanning several lines must keep the namespace target on that line.
type NamespaceCodec struct {
	Namespace string
	Marker    string
}

// NewNamespaceCodec constructs a codec using DefaultHiddenImportMarker.
func NewNamespaceCodec(namespace string) NamespaceCodec {
	return NamespaceCodec{Namespace: namespace, Marker: DefaultHiddenImportMarker}
}

// Encode prefixes every statement targeting the namespace with the marker.
// Content already holding the marker is rejected because Decode could not tell the two apart.
func (codec NamespaceCodec) Encode(content string) (string, error) {
	statementPattern, patternError := codec.statementPattern()
	if patternError != nil {
		return "", patternError
	}
	if strings.Contains(content, codec.Marker) {
		return "", fmt.Errorf(markerAlreadyPresentTemplateConstant, codec.Marker)
	}

	return statementPattern.ReplaceAllStringFunc(content, func(statementStart string) string {
		indentation := statementStart[:len(statementStart)-len(strings.TrimLeft(statementStart, " \t"))]
		return indentation + codec.Marker + strings.TrimLeft(statementStart, " \t")
	}), nil
}

// Decode removes every marker occurrence.
func (codec NamespaceCodec) Decode(content string) (string, error) {
	if len(codec.Marker) == 0 {
		return "", errEmptyMarker
	}
	return strings.ReplaceAll(content, codec.Marker, ""), nil
}

func (codec NamespaceCodec) statementPattern() (*regexp.Regexp, error) {
	if len(codec.Namespace) == 0 {
		return nil, errEmptyNamespace
	}
	if len(codec.Marker) == 0 {
		return nil, errEmptyMarker
	}
	return regexp.MustCompile(fmt.Sprintf(hiddenStatementPatternTemplateConstant, regexp.QuoteMeta(codec.Namespace))), nil
}

// SortModuleImportsFirst stable-sorts the single-line import statements of the content so
// @use and @forward precede @import. Statements are written back into the line slots that
// held statements before, so every other line keeps its position.
func SortModuleImportsFirst(content string) string {
	lines := strings.Split(content, lineSeparatorConstant)

	statementSlots := make([]int, 0)
	statements := make([]string, 0)
	for lineIndex, line := range lines {
		if ClassifyImportLine(line) == ImportKindNone {
			continue
		}
		statementSlots = append(statementSlots, lineIndex)
		statements = append(statements, line)
	}
	if len(statements) < 2 {
		return content
	}

	sort.SliceStable(statements, func(leftIndex int, rightIndex int) bool {
		return ClassifyImportLine(statements[leftIndex]) < ClassifyImportLine(statements[rightIndex])
	})

	for slotIndex, lineIndex := range statementSlots {
		lines[lineIndex] = statements[slotIndex]
	}
	return strings.Join(lines, lineSeparatorConstant)
}
