package migration

import (
	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
)

const (
	summaryMessageConstant              = "Migration completed"
	logFieldMigratedFilesConstant       = "migrated_files"
	logFieldMigratorInvocationsConstant = "migrator_invocations"
	logFieldRemovedShimsConstant        = "removed_shims"
	logFieldReinsertedShimsConstant     = "reinserted_shims"
	logFieldRewrappedFilesConstant      = "rewrapped_files"
	logFieldUnfixableLinesConstant      = "unfixable_lines"
	logFieldFormatterFailedConstant     = "formatter_failed"
	logFieldToolInvocationsConstant     = "tool_invocations"
	logFieldToolFailuresConstant        = "tool_failures"
)

// InvocationCounter tallies external tool invocations per executable.
type InvocationCounter struct {
	invocations map[execshell.CommandName]int
	failures    int
}

// NewInvocationCounter constructs an empty counter.
func NewInvocationCounter() *InvocationCounter {
	return &InvocationCounter{invocations: make(map[execshell.CommandName]int)}
}

// CommandStarted counts the invocation.
func (counter *InvocationCounter) CommandStarted(command execshell.ShellCommand) {
	counter.invocations[command.Name]++
}

// CommandCompleted counts non-zero exits as failures.
func (counter *InvocationCounter) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode != 0 {
		counter.failures++
	}
}

// CommandExecutionFailed counts processes that could not run as failures.
func (counter *InvocationCounter) CommandExecutionFailed(execshell.ShellCommand, error) {
	counter.failures++
}

// Failures returns the number of failed invocations across executables.
func (counter *InvocationCounter) Failures() int {
	return counter.failures
}

// Snapshot copies the per-executable invocation counts.
func (counter *InvocationCounter) Snapshot() map[string]int {
	snapshot := make(map[string]int, len(counter.invocations))
	for name, count := range counter.invocations {
		snapshot[string(name)] = count
	}
	return snapshot
}

func logRunSummary(logger *zap.Logger, result RunResult, counter *InvocationCounter) {
	fields := []zap.Field{
		zap.Int(logFieldMigratedFilesConstant, len(result.MigratedFiles)),
		zap.Int(logFieldMigratorInvocationsConstant, result.MigratorInvocations),
		zap.Int(logFieldRemovedShimsConstant, len(result.RemovedShims)),
		zap.Int(logFieldReinsertedShimsConstant, len(result.ReinsertedShims)),
		zap.Int(logFieldRewrappedFilesConstant, len(result.RewrappedFiles)),
		zap.Int(logFieldUnfixableLinesConstant, result.UnfixableLines),
		zap.Bool(logFieldFormatterFailedConstant, result.FormatterFailed),
	}
	if counter != nil {
		fields = append(fields,
			zap.Any(logFieldToolInvocationsConstant, counter.Snapshot()),
			zap.Int(logFieldToolFailuresConstant, counter.Failures()),
		)
	}
	logger.Info(summaryMessageConstant, fields...)
}
