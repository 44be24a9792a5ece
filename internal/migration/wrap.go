package migration

import (
	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/stylesheet"
)

const (
	unfixableLineMessageConstant = "Line still exceeds the limit; no space to break at"
	logFieldFileConstant         = "file"
	logFieldLineNumberConstant   = "line"
	logFieldLineLengthConstant   = "length"
	logFieldLimitConstant        = "limit"
)

func (service *Service) wrapLines(root string, step StepConfiguration, result *RunResult) error {
	matches, matchError := matchFiles(root, step.Pattern, step.Exclude)
	if matchError != nil {
		return matchError
	}

	rewrapped := make([]string, 0)
	for _, relativePath := range matches {
		var unfixableLines []stylesheet.UnfixableLine
		change, rewriteError := service.rewriter.Rewrite(absolutePath(root, relativePath), func(content string) (string, error) {
			wrapped, unfixable := stylesheet.WrapLongLines(content, step.Limit)
			unfixableLines = unfixable
			return wrapped, nil
		})
		if rewriteError != nil {
			return rewriteError
		}
		if change.Updated {
			rewrapped = append(rewrapped, relativePath)
		}

		for _, unfixableLine := range unfixableLines {
			service.logger.Warn(unfixableLineMessageConstant,
				zap.String(logFieldFileConstant, relativePath),
				zap.Int(logFieldLineNumberConstant, unfixableLine.LineNumber),
				zap.Int(logFieldLineLengthConstant, unfixableLine.Length),
				zap.Int(logFieldLimitConstant, step.Limit),
			)
		}
		result.UnfixableLines += len(unfixableLines)
	}

	result.RewrappedFiles = append(result.RewrappedFiles, rewrapped...)
	service.logFileCount(step, len(rewrapped))
	return nil
}
