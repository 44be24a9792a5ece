package execshell

// CommandEventObserver is told about every command a ShellExecutor runs. The migration
// summary uses it to count sass-migrator and formatter invocations.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	// CommandCompleted fires whenever the process ran, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be started or waited on.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type discardingObserver struct{}

func (discardingObserver) CommandStarted(ShellCommand) {}

func (discardingObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (discardingObserver) CommandExecutionFailed(ShellCommand, error) {}
