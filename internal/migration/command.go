package migration

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
	"github.com/temirov/scssmigrate/internal/gitworktree"
	"github.com/temirov/scssmigrate/internal/utils/flags"
	pathutils "github.com/temirov/scssmigrate/internal/utils/path"
)

const (
	commandUseConstant                  = "scssmigrate"
	commandShortDescriptionConstant     = "Migrate SCSS partials from @import to the Sass module system"
	commandLongDescriptionConstant      = "scssmigrate resets the stylesheet tree, runs sass-migrator over it in dependency order, and rebuilds the import-only shims that keep legacy @import consumers working."
	resetFlagNameConstant               = "reset"
	resetFlagUsageConstant              = "Only reset the stylesheet tree with git and exit"
	rootFlagNameConstant                = "root"
	rootFlagUsageConstant               = "Directory holding the stylesheets to migrate (overrides configuration)"
	tildePrefixConstant                 = "~"
	rootResolutionErrorTemplateConstant = "unable to resolve migration root: %w"
	executorCreationErrorTemplate       = "unable to construct shell executor: %w"
	serviceCreationErrorTemplate        = "unable to construct migration service: %w"
	migrationFailedTemplateConstant     = "migration failed: %w"
	migrationFailedMessageConstant      = "Migration failed"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// MigrationExecutor runs a migration.
type MigrationExecutor interface {
	Execute(executionContext context.Context, options RunOptions) (RunResult, error)
}

// ServiceProvider constructs a migration executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationExecutor, error)

// CommandBuilder assembles the scssmigrate Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() Configuration
	CommandRunner         execshell.CommandRunner
	WorktreeInspector     WorktreeInspector
	ServiceProvider       ServiceProvider
	WorkingDirectory      string
}

// Build constructs the migration command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	flags.AddToggleFlag(command.Flags(), nil, resetFlagNameConstant, false, resetFlagUsageConstant)
	command.Flags().String(rootFlagNameConstant, "", rootFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	resetOnly, resetFlagError := command.Flags().GetBool(resetFlagNameConstant)
	if resetFlagError != nil {
		return resetFlagError
	}

	rootPath := configuration.Root
	if command.Flags().Changed(rootFlagNameConstant) {
		rootPath, _ = command.Flags().GetString(rootFlagNameConstant)
	}
	root, rootError := builder.resolveRoot(rootPath)
	if rootError != nil {
		return fmt.Errorf(rootResolutionErrorTemplateConstant, rootError)
	}

	invocationCounter := NewInvocationCounter()
	executor, executorError := builder.resolveExecutor(logger, invocationCounter)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplate, executorError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:            logger,
		Executor:          executor,
		WorktreeInspector: builder.resolveWorktreeInspector(),
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplate, serviceError)
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	result, runError := service.Execute(executionContext, RunOptions{
		Root:          root,
		ResetOnly:     resetOnly,
		Configuration: configuration,
	})
	if runError != nil {
		logger.Error(migrationFailedMessageConstant, zap.String(logFieldRootConstant, root), zap.Error(runError))
		return fmt.Errorf(migrationFailedTemplateConstant, runError)
	}

	if !result.ResetOnly {
		logRunSummary(logger, result, invocationCounter)
	}
	return nil
}

func (builder *CommandBuilder) resolveRoot(rootPath string) (string, error) {
	trimmedRoot := strings.TrimSpace(rootPath)
	if len(trimmedRoot) > 0 && len(builder.WorkingDirectory) > 0 && !filepath.IsAbs(trimmedRoot) && !strings.HasPrefix(trimmedRoot, tildePrefixConstant) {
		trimmedRoot = filepath.Join(builder.WorkingDirectory, trimmedRoot)
	}
	return pathutils.NewRootResolver().Resolve(trimmedRoot)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger, observer execshell.CommandEventObserver) (CommandExecutor, error) {
	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor.WithObserver(observer), nil
}

func (builder *CommandBuilder) resolveWorktreeInspector() WorktreeInspector {
	if builder.WorktreeInspector != nil {
		return builder.WorktreeInspector
	}
	return gitworktree.NewInspector()
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (MigrationExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}
