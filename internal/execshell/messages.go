package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	flagPrefixConstant                      = "-"
)

const (
	gitCleanSubcommandNameConstant    = "clean"
	gitCheckoutSubcommandNameConstant = "checkout"
	migratorModuleSubcommandConstant  = "module"
	migratorForwardFlagPrefixConstant = "--forward"
)

const (
	gitCleanStartTemplateConstant               = "Removing untracked files in %s"
	gitCleanSuccessTemplateConstant             = "Removed untracked files in %s"
	gitCleanFailureTemplateConstant             = "Failed to remove untracked files in %s (exit code %d%s)"
	gitCleanExecutionFailureTemplateConstant    = "Unable to remove untracked files in %s: %s"
	gitCheckoutStartTemplateConstant            = "Restoring tracked files in %s"
	gitCheckoutSuccessTemplateConstant          = "Restored tracked files in %s"
	gitCheckoutFailureTemplateConstant          = "Failed to restore tracked files in %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant = "Unable to restore tracked files in %s: %s"
	migratorStartTemplateConstant               = "Migrating %d %s to the module system%s"
	migratorSuccessTemplateConstant             = "Migrated %d %s to the module system%s"
	migratorFailureTemplateConstant             = "Failed to migrate %d %s to the module system (exit code %d%s)"
	migratorExecutionFailureTemplateConstant    = "Unable to migrate %d %s to the module system: %s"
	migratorForwardingSuffixConstant            = " with import-only forwarding"
	migratorSingularFileLabelConstant           = "file"
	migratorPluralFileLabelConstant             = "files"
	migratorSingularFileCountConstant           = 1
	migratorSubcommandIndexConstant             = 0
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandSassMigrator:
		return formatter.describeMigratorMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)
	workingDirectory := formatter.describeWorkingDirectory(command)
	stderrSuffix := formatter.formatStandardErrorSuffix(result.StandardError)

	switch subcommand {
	case gitCleanSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCleanStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitCleanSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitCleanFailureTemplateConstant, workingDirectory, result.ExitCode, stderrSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCleanExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	case gitCheckoutSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, result.ExitCode, stderrSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeMigratorMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, migratorSubcommandIndexConstant) != migratorModuleSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	fileCount := 0
	forwarding := false
	for _, argument := range arguments[1:] {
		if strings.HasPrefix(argument, migratorForwardFlagPrefixConstant) {
			forwarding = true
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		fileCount++
	}

	fileLabel := migratorPluralFileLabelConstant
	if fileCount == migratorSingularFileCountConstant {
		fileLabel = migratorSingularFileLabelConstant
	}
	forwardingSuffix := emptyStringConstant
	if forwarding {
		forwardingSuffix = migratorForwardingSuffixConstant
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(migratorStartTemplateConstant, fileCount, fileLabel, forwardingSuffix)
	case messageStageSuccess:
		return fmt.Sprintf(migratorSuccessTemplateConstant, fileCount, fileLabel, forwardingSuffix)
	case messageStageFailure:
		return fmt.Sprintf(migratorFailureTemplateConstant, fileCount, fileLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(migratorExecutionFailureTemplateConstant, fileCount, fileLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}
