package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/scssmigrate/internal/execshell"
)

const (
	gitCleanSubcommandConstant       = "clean"
	gitForceFlagConstant             = "-f"
	gitDirectoriesFlagConstant       = "-d"
	gitCheckoutSubcommandConstant    = "checkout"
	gitPathSeparatorArgumentConstant = "--"
	gitCurrentDirectoryConstant      = "."
	locateRepositoryTemplateConstant = "unable to reset %s: %w"
	resetCompletedMessageConstant    = "Working tree reset"
	resetLeftChangesMessageConstant  = "Paths still differ from HEAD after reset"
	resetStatusFailedMessageConstant = "Unable to inspect working tree after reset"
	logFieldRepositoryConstant       = "repository"
	logFieldDirtyPathsConstant       = "paths"
)

// resetWorktree discards untracked files and unstaged changes below root so every run starts
// from the committed sources.
func (service *Service) resetWorktree(executionContext context.Context, root string) error {
	location, locateError := service.worktreeInspector.Locate(root)
	if locateError != nil {
		return fmt.Errorf(locateRepositoryTemplateConstant, root, locateError)
	}

	resetCommands := [][]string{
		{gitCleanSubcommandConstant, gitForceFlagConstant, gitDirectoriesFlagConstant, gitPathSeparatorArgumentConstant, gitCurrentDirectoryConstant},
		{gitCheckoutSubcommandConstant, gitPathSeparatorArgumentConstant, gitCurrentDirectoryConstant},
	}
	for _, arguments := range resetCommands {
		_, gitError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: root,
		})
		if gitError != nil {
			return gitError
		}
	}

	service.logger.Info(resetCompletedMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.String(logFieldRepositoryConstant, location.RepositoryRoot),
	)

	dirtyPaths, statusError := service.worktreeInspector.DirtyPaths(location)
	if statusError != nil {
		service.logger.Warn(resetStatusFailedMessageConstant, zap.Error(statusError))
		return nil
	}
	if len(dirtyPaths) > 0 {
		service.logger.Warn(resetLeftChangesMessageConstant, zap.Strings(logFieldDirtyPathsConstant, dirtyPaths))
	}
	return nil
}
