package migration

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
)

const (
	migratorModuleSubcommandConstant = "module"
	migratorForwardFlagConstant      = "--forward=import-only"
	migratorRemovePrefixFlagConstant = "--remove-prefix="
	prefixListSeparatorConstant      = ","
	batchSelectedMessageConstant     = "Migration batch selected"
	batchSkippedMessageConstant      = "Nothing left to migrate for pattern; skipping"
	batchToleratedMessageConstant    = "Migrator failed; continuing because the step tolerates failures"
	migratorOutputMessageConstant    = "Migrator output"
	logFieldPatternConstant          = "pattern"
	logFieldForwardConstant          = "forward"
	logFieldPrefixesConstant         = "prefixes"
	logFieldMigratorOutputConstant   = "output"
	logFieldAlreadyMigratedConstant  = "already_migrated"
	logFieldBatchFilesConstant       = "batch"
)

// migrateBatch hands every not yet migrated file selected by the step to a single migrator
// invocation and records the files as migrated.
func (service *Service) migrateBatch(executionContext context.Context, run stepRun, step StepConfiguration, result *RunResult) error {
	candidates, matchError := matchFiles(run.root, step.Pattern, step.Exclude, run.configuration.Ignore)
	if matchError != nil {
		return matchError
	}

	batch := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if run.state.IsMigrated(candidate) {
			continue
		}
		batch = append(batch, candidate)
	}

	prefixes := run.prefixGroups[step.Prefixes]
	service.logger.Info(batchSelectedMessageConstant,
		zap.String(logFieldStepDescriptionConstant, step.Description),
		zap.String(logFieldPatternConstant, step.Pattern),
		zap.Int(logFieldFileCountConstant, len(batch)),
		zap.Int(logFieldAlreadyMigratedConstant, len(candidates)-len(batch)),
		zap.Bool(logFieldForwardConstant, step.Forward),
		zap.Int(logFieldPrefixesConstant, len(prefixes)),
	)
	service.logger.Debug(batchSelectedMessageConstant, zap.Strings(logFieldBatchFilesConstant, batch))

	if len(batch) == 0 {
		service.logger.Info(batchSkippedMessageConstant, zap.String(logFieldPatternConstant, step.Pattern))
		return nil
	}

	toolContext, cancelTool := toolExecutionContext(executionContext, run.configuration.Tools.Timeout)
	executionResult, executionError := service.executor.Execute(toolContext, execshell.ShellCommand{
		Name: execshell.CommandName(run.configuration.Tools.Migrator),
		Details: execshell.CommandDetails{
			Arguments:        BuildMigratorArguments(step.Forward, prefixes, batch),
			WorkingDirectory: run.root,
		},
	})
	cancelTool()

	result.MigratorInvocations++
	run.state.MarkMigrated(batch)

	if executionError != nil {
		if step.TolerateFailure && executionContext.Err() == nil && isToolFailure(executionError) {
			service.logger.Warn(batchToleratedMessageConstant,
				zap.String(logFieldStepDescriptionConstant, step.Description),
				zap.Error(executionError),
			)
			return nil
		}
		return executionError
	}

	if output := strings.TrimSpace(executionResult.StandardOutput); len(output) > 0 {
		service.logger.Debug(migratorOutputMessageConstant, zap.String(logFieldMigratorOutputConstant, output))
	}
	return nil
}

// BuildMigratorArguments assembles the sass-migrator command line for one batch.
func BuildMigratorArguments(forward bool, prefixes []string, files []string) []string {
	arguments := []string{migratorModuleSubcommandConstant}
	if forward {
		arguments = append(arguments, migratorForwardFlagConstant)
	}
	if len(prefixes) > 0 {
		arguments = append(arguments, migratorRemovePrefixFlagConstant+strings.Join(prefixes, prefixListSeparatorConstant))
	}
	return append(arguments, files...)
}

func isToolFailure(executionError error) bool {
	var commandFailed execshell.CommandFailedError
	if errors.As(executionError, &commandFailed) {
		return true
	}
	var commandExecution execshell.CommandExecutionError
	return errors.As(executionError, &commandExecution)
}

func toolExecutionContext(executionContext context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(executionContext)
	}
	return context.WithTimeout(executionContext, timeout)
}
