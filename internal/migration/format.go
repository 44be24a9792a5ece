package migration

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
)

const (
	formatterSkippedMessageConstant   = "No formatter configured; skipping"
	formatterFailedMessageConstant    = "Formatter failed; continuing"
	formatterSucceededMessageConstant = "Formatter completed"
	logFieldFormatterConstant         = "formatter"
)

// runFormatter invokes the configured formatter. Formatter failures are logged and reported
// through the boolean; only cancellation is returned as an error.
func (service *Service) runFormatter(executionContext context.Context, root string, tools ToolsConfiguration) (bool, error) {
	formatter := tools.Formatter
	if len(formatter.Command) == 0 {
		service.logger.Info(formatterSkippedMessageConstant)
		return true, nil
	}

	workingDirectory := formatter.WorkingDirectory
	if !filepath.IsAbs(workingDirectory) {
		workingDirectory = filepath.Join(root, workingDirectory)
	}

	toolContext, cancelTool := toolExecutionContext(executionContext, tools.Timeout)
	defer cancelTool()

	_, formatterError := service.executor.Execute(toolContext, execshell.ShellCommand{
		Name: execshell.CommandName(formatter.Command),
		Details: execshell.CommandDetails{
			Arguments:        formatter.Arguments,
			WorkingDirectory: workingDirectory,
		},
	})
	if formatterError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return false, contextError
		}
		service.logger.Warn(formatterFailedMessageConstant,
			zap.String(logFieldFormatterConstant, formatter.Command),
			zap.Error(formatterError),
		)
		return false, nil
	}

	service.logger.Info(formatterSucceededMessageConstant, zap.String(logFieldFormatterConstant, formatter.Command))
	return true, nil
}
