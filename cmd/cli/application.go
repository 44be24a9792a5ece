package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/migration"
	"github.com/temirov/scssmigrate/internal/utils"
	"github.com/temirov/scssmigrate/internal/utils/flags"
)

const (
	applicationNameConstant                 = "scssmigrate"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the scssmigrate version and exit."
	versionOutputTemplateConstant           = "%s version: %s\n"
	developmentVersionConstant              = "dev"
	toolchainDevelopmentVersionConstant     = "(devel)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	migrationConfigurationKeyConstant       = "migration"
	environmentPrefixConstant               = "SCSSMIGRATE"
	configurationSearchPathEnvironmentName  = "SCSSMIGRATE_CONFIG_SEARCH_PATH"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationStepCountFieldConstant     = "step_count"
	configurationEmbeddedFieldConstant      = "embedded_defaults"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration `mapstructure:"common"`
	Migration migration.Configuration        `mapstructure:"migration"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	buildError            error
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionFlagValue      bool
	versionResolver       func(context.Context) string
	exitFunction          func(int)
	versionOutput         io.Writer
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     resolveModuleVersion,
		exitFunction:        os.Exit,
		versionOutput:       os.Stdout,
	}

	migrationBuilder := migration.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() migration.Configuration {
			return application.configuration.Migration
		},
	}
	if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		migrationBuilder.WorkingDirectory = workingDirectory
	}

	cobraCommand, buildError := migrationBuilder.Build()
	if buildError != nil {
		application.buildError = fmt.Errorf(commandBuildErrorTemplateConstant, applicationNameConstant, buildError)
		cobraCommand = &cobra.Command{Use: applicationNameConstant}
	}

	cobraCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		if application.versionFlagValue {
			fmt.Fprintf(application.versionOutput, versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(command.Context()))
			application.exitFunction(0)
			return nil
		}
		return application.initializeConfiguration(command)
	}

	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command with the provided arguments and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context, arguments []string) error {
	if application.buildError != nil {
		return application.buildError
	}

	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(application.rootCommand.Flags(), arguments))
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and runs it with the process arguments.
func Execute(executionContext context.Context) error {
	return NewApplication().Execute(executionContext, os.Args[1:])
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range migration.DefaultConfigurationValues(migrationConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Bool(configurationEmbeddedFieldConstant, application.configurationMetadata.EmbeddedConfigurationUsed),
		zap.Int(configurationStepCountFieldConstant, len(application.configuration.Migration.Steps)),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP), errors.Is(syncError, syscall.EINVAL), errors.Is(syncError, syscall.ENOTTY), errors.Is(syncError, syscall.EBADF):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths honours an explicit search path list before falling back to the
// working directory.
func configurationSearchPaths() []string {
	configuredPaths := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentName))
	if len(configuredPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	searchPaths := []string{}
	for _, searchPath := range filepath.SplitList(configuredPaths) {
		if trimmed := strings.TrimSpace(searchPath); len(trimmed) > 0 {
			searchPaths = append(searchPaths, trimmed)
		}
	}
	if len(searchPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}
	return searchPaths
}

func resolveModuleVersion(context.Context) string {
	if buildInformation, available := debug.ReadBuildInfo(); available && len(buildInformation.Main.Version) > 0 && buildInformation.Main.Version != toolchainDevelopmentVersionConstant {
		return buildInformation.Main.Version
	}
	return developmentVersionConstant
}
