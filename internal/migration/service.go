package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
	"github.com/temirov/scssmigrate/internal/gitworktree"
	"github.com/temirov/scssmigrate/internal/stylesheet"
	"github.com/temirov/scssmigrate/internal/textfile"
)

const (
	executorMissingMessageConstant          = "command executor not configured"
	worktreeInspectorMissingMessageConstant = "worktree inspector not configured"
	invalidConfigurationTemplateConstant    = "invalid migration configuration: %w"
	prefixResolutionTemplateConstant        = "unable to resolve prefix groups: %w"
	importMapTemplateConstant               = "unable to extract legacy imports: %w"
	stepFailedTemplateConstant              = "step %d (%s) failed: %w"
	unsupportedOperationTemplateConstant    = "unsupported operation %q"
	stepStartedMessageConstant              = "Running migration step"
	importMapBuiltMessageConstant           = "Legacy imports extracted"
	resetOnlyMessageConstant                = "Reset requested; skipping migration"
	stepCompletedMessageConstant            = "Migration step completed"
	logFieldStepNumberConstant              = "step"
	logFieldStepOperationConstant           = "operation"
	logFieldStepDescriptionConstant         = "description"
	logFieldRootConstant                    = "root"
	logFieldFileCountConstant               = "files"
)

var (
	errExecutorMissing          = errors.New(executorMissingMessageConstant)
	errWorktreeInspectorMissing = errors.New(worktreeInspectorMissingMessageConstant)
)

// CommandExecutor runs the external tools of a migration.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WorktreeInspector answers repository questions about the migration root.
type WorktreeInspector interface {
	Locate(directory string) (gitworktree.Location, error)
	DirtyPaths(location gitworktree.Location) ([]string, error)
}

// ServiceDependencies describes required collaborators for a migration run.
type ServiceDependencies struct {
	Logger            *zap.Logger
	Executor          CommandExecutor
	WorktreeInspector WorktreeInspector
}

// RunOptions configures one run. Root must be an absolute directory.
type RunOptions struct {
	Root          string
	ResetOnly     bool
	Configuration Configuration
}

// RunResult captures the observable outcomes of a run.
type RunResult struct {
	ResetOnly           bool
	MigratedFiles       []string
	MigratorInvocations int
	HiddenFiles         []string
	RestoredFiles       []string
	RemovedShims        []string
	ReinsertedShims     []string
	RewrappedFiles      []string
	UnfixableLines      int
	FormatterFailed     bool
}

// ImportMap associates absolute stylesheet paths with their legacy import statements in source order.
type ImportMap map[string][]string

// RunState is the in-memory state threaded through the steps of a run.
type RunState struct {
	migrated  map[string]struct{}
	importMap ImportMap
}

func newRunState(importMap ImportMap) *RunState {
	return &RunState{migrated: make(map[string]struct{}), importMap: importMap}
}

// IsMigrated reports whether a root-relative path was handed to the migrator already.
func (state *RunState) IsMigrated(relativePath string) bool {
	_, migrated := state.migrated[relativePath]
	return migrated
}

// MarkMigrated records root-relative paths as migrated.
func (state *RunState) MarkMigrated(relativePaths []string) {
	for _, relativePath := range relativePaths {
		state.migrated[relativePath] = struct{}{}
	}
}

// MigratedFiles lists every migrated path in lexical order.
func (state *RunState) MigratedFiles() []string {
	migratedFiles := make([]string, 0, len(state.migrated))
	for relativePath := range state.migrated {
		migratedFiles = append(migratedFiles, relativePath)
	}
	sort.Strings(migratedFiles)
	return migratedFiles
}

// Service executes the reset and the configured migration plan.
type Service struct {
	logger            *zap.Logger
	executor          CommandExecutor
	worktreeInspector WorktreeInspector
	rewriter          *textfile.Rewriter
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, errExecutorMissing
	}
	if dependencies.WorktreeInspector == nil {
		return nil, errWorktreeInspectorMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:            logger,
		executor:          dependencies.Executor,
		worktreeInspector: dependencies.WorktreeInspector,
		rewriter:          textfile.NewRewriter(logger),
	}, nil
}

// Execute resets the root and, unless only a reset was requested, runs every plan step in order.
// The first failing step stops the run; nothing is rolled back.
func (service *Service) Execute(executionContext context.Context, options RunOptions) (RunResult, error) {
	configuration := options.Configuration
	if validationError := configuration.Validate(); validationError != nil {
		return RunResult{}, fmt.Errorf(invalidConfigurationTemplateConstant, validationError)
	}

	if resetError := service.resetWorktree(executionContext, options.Root); resetError != nil {
		return RunResult{}, resetError
	}
	if options.ResetOnly {
		service.logger.Info(resetOnlyMessageConstant, zap.String(logFieldRootConstant, options.Root))
		return RunResult{ResetOnly: true}, nil
	}

	prefixGroups, prefixError := ResolvePrefixGroups(options.Root, configuration.PrefixGroups)
	if prefixError != nil {
		return RunResult{}, fmt.Errorf(prefixResolutionTemplateConstant, prefixError)
	}

	importMap, importMapError := BuildImportMap(options.Root, configuration.Ignore, configuration.Namespace)
	if importMapError != nil {
		return RunResult{}, fmt.Errorf(importMapTemplateConstant, importMapError)
	}
	service.logger.Info(importMapBuiltMessageConstant, zap.Int(logFieldFileCountConstant, len(importMap)))

	run := stepRun{
		root:          options.Root,
		configuration: configuration,
		prefixGroups:  prefixGroups,
		codec:         stylesheet.NamespaceCodec{Namespace: configuration.Namespace, Marker: configuration.Marker},
		state:         newRunState(importMap),
	}

	result := RunResult{}
	for stepIndex, step := range configuration.Steps {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		service.logger.Info(stepStartedMessageConstant,
			zap.Int(logFieldStepNumberConstant, stepIndex+1),
			zap.String(logFieldStepOperationConstant, step.Operation),
			zap.String(logFieldStepDescriptionConstant, step.Description),
		)

		if stepError := service.executeStep(executionContext, run, step, &result); stepError != nil {
			result.MigratedFiles = run.state.MigratedFiles()
			return result, fmt.Errorf(stepFailedTemplateConstant, stepIndex+1, step.Description, stepError)
		}
	}

	result.MigratedFiles = run.state.MigratedFiles()
	return result, nil
}

type stepRun struct {
	root          string
	configuration Configuration
	prefixGroups  map[string][]string
	codec         stylesheet.NamespaceCodec
	state         *RunState
}

func (service *Service) executeStep(executionContext context.Context, run stepRun, step StepConfiguration, result *RunResult) error {
	switch step.Operation {
	case OperationMigrate:
		return service.migrateBatch(executionContext, run, step, result)
	case OperationHideImports:
		hiddenFiles, hideError := HideImports(service.rewriter, run.root, step.Pattern, step.Exclude, run.codec)
		result.HiddenFiles = append(result.HiddenFiles, hiddenFiles...)
		service.logFileCount(step, len(hiddenFiles))
		return hideError
	case OperationRestoreImports:
		restoredFiles, restoreError := RestoreImports(service.rewriter, run.root, step.Pattern, step.Exclude, run.codec)
		result.RestoredFiles = append(result.RestoredFiles, restoredFiles...)
		service.logFileCount(step, len(restoredFiles))
		return restoreError
	case OperationRemoveShims:
		removedShims, removeError := RemoveShims(service.logger, run.root, step.Pattern, step.Keep)
		result.RemovedShims = append(result.RemovedShims, removedShims...)
		service.logFileCount(step, len(removedShims))
		return removeError
	case OperationReinsertImports:
		reinsertedShims, reinsertError := ReinsertImports(service.rewriter, run.state.importMap)
		result.ReinsertedShims = append(result.ReinsertedShims, reinsertedShims...)
		service.logFileCount(step, len(reinsertedShims))
		return reinsertError
	case OperationFormat:
		formatterSucceeded, formatError := service.runFormatter(executionContext, run.root, run.configuration.Tools)
		result.FormatterFailed = !formatterSucceeded
		return formatError
	case OperationWrapLines:
		return service.wrapLines(run.root, step, result)
	default:
		return fmt.Errorf(unsupportedOperationTemplateConstant, step.Operation)
	}
}

func (service *Service) logFileCount(step StepConfiguration, fileCount int) {
	service.logger.Info(stepCompletedMessageConstant,
		zap.String(logFieldStepOperationConstant, step.Operation),
		zap.String(logFieldStepDescriptionConstant, step.Description),
		zap.Int(logFieldFileCountConstant, fileCount),
	)
}
