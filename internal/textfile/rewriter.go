// Package textfile rewrites text files in place while preserving their permissions.
package textfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

const (
	readFileErrorTemplateConstant      = "unable to read %s: %w"
	statFileErrorTemplateConstant      = "unable to stat %s: %w"
	writeFileErrorTemplateConstant     = "unable to write %s: %w"
	transformFileErrorTemplateConstant = "unable to transform %s: %w"
	missingTransformMessageConstant    = "text transform not provided"
	rewriteLogMessageConstant          = "Rewrote file"
	unchangedLogMessageConstant        = "File already up to date"
	logFieldPathConstant               = "path"
	logFieldInsertedLinesConstant      = "inserted_lines"
	logFieldDeletedLinesConstant       = "deleted_lines"
	lineSeparatorConstant              = "\n"
)

var errMissingTransform = errors.New(missingTransformMessageConstant)

// Transform maps the current file content to its desired content.
type Transform func(content string) (string, error)

// Change summarizes one Rewrite call.
type Change struct {
	Path          string
	Updated       bool
	InsertedLines int
	DeletedLines  int
}

// Rewriter applies transforms to files on disk.
type Rewriter struct {
	logger *zap.Logger
	differ *diffmatchpatch.DiffMatchPatch
}

// NewRewriter constructs a Rewriter; a nil logger discards output.
func NewRewriter(logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{logger: logger, differ: diffmatchpatch.New()}
}

// Rewrite reads the file, applies the transform and writes the result back when it differs,
// keeping the original permission bits.
func (rewriter *Rewriter) Rewrite(filePath string, transform Transform) (Change, error) {
	if transform == nil {
		return Change{}, errMissingTransform
	}

	fileInfo, statError := os.Stat(filePath)
	if statError != nil {
		return Change{}, fmt.Errorf(statFileErrorTemplateConstant, filePath, statError)
	}

	originalContent, readError := os.ReadFile(filePath)
	if readError != nil {
		return Change{}, fmt.Errorf(readFileErrorTemplateConstant, filePath, readError)
	}

	updatedContent, transformError := transform(string(originalContent))
	if transformError != nil {
		return Change{}, fmt.Errorf(transformFileErrorTemplateConstant, filePath, transformError)
	}

	if updatedContent == string(originalContent) {
		rewriter.logger.Debug(unchangedLogMessageConstant, zap.String(logFieldPathConstant, filePath))
		return Change{Path: filePath}, nil
	}

	writeError := os.WriteFile(filePath, []byte(updatedContent), fileInfo.Mode().Perm())
	if writeError != nil {
		return Change{}, fmt.Errorf(writeFileErrorTemplateConstant, filePath, writeError)
	}

	change := rewriter.lineChange(filePath, string(originalContent), updatedContent)
	rewriter.logger.Debug(rewriteLogMessageConstant,
		zap.String(logFieldPathConstant, filePath),
		zap.Int(logFieldInsertedLinesConstant, change.InsertedLines),
		zap.Int(logFieldDeletedLinesConstant, change.DeletedLines),
	)
	return change, nil
}

func (rewriter *Rewriter) lineChange(filePath string, originalContent string, updatedContent string) Change {
	originalRunes, updatedRunes, lineArray := rewriter.differ.DiffLinesToRunes(originalContent, updatedContent)
	diffs := rewriter.differ.DiffMainRunes(originalRunes, updatedRunes, false)
	diffs = rewriter.differ.DiffCharsToLines(diffs, lineArray)

	change := Change{Path: filePath, Updated: true}
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			change.InsertedLines += countLines(diff.Text)
		case diffmatchpatch.DiffDelete:
			change.DeletedLines += countLines(diff.Text)
		}
	}
	return change
}

func countLines(text string) int {
	if len(text) == 0 {
		return 0
	}
	lineCount := strings.Count(text, lineSeparatorConstant)
	if !strings.HasSuffix(text, lineSeparatorConstant) {
		lineCount++
	}
	return lineCount
}
