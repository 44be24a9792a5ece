// Package gitworktree inspects the git repository that holds the migration root.
package gitworktree

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
)

const (
	notRepositoryTemplateConstant    = "%s is not inside a git repository: %w"
	openRepositoryTemplateConstant   = "unable to open git repository for %s: %w"
	openWorktreeTemplateConstant     = "unable to open git worktree for %s: %w"
	resolvePathTemplateConstant      = "unable to resolve %s: %w"
	worktreeStatusTemplateConstant   = "unable to read git status for %s: %w"
	currentDirectoryRelativeConstant = "."
	parentDirectoryPrefixConstant    = "../"
	pathSeparatorConstant            = "/"
)

// ErrNotRepository indicates that the inspected directory does not belong to a git repository.
var ErrNotRepository = git.ErrRepositoryNotExists

// Location pins a directory inside its repository.
type Location struct {
	RepositoryRoot string
	// RelativeRoot is slash separated and "." when the directory is the repository root.
	RelativeRoot string
}

// Inspector reads repository state through go-git without shelling out.
type Inspector struct{}

// NewInspector constructs an Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Locate finds the repository that contains directory, walking up parent directories.
func (inspector *Inspector) Locate(directory string) (Location, error) {
	worktree, openError := openWorktree(directory)
	if openError != nil {
		return Location{}, openError
	}

	repositoryRoot, rootError := filepath.EvalSymlinks(worktree.Filesystem.Root())
	if rootError != nil {
		return Location{}, fmt.Errorf(resolvePathTemplateConstant, worktree.Filesystem.Root(), rootError)
	}
	resolvedDirectory, directoryError := filepath.EvalSymlinks(directory)
	if directoryError != nil {
		return Location{}, fmt.Errorf(resolvePathTemplateConstant, directory, directoryError)
	}

	relativeRoot, relativeError := filepath.Rel(repositoryRoot, resolvedDirectory)
	if relativeError != nil {
		return Location{}, fmt.Errorf(resolvePathTemplateConstant, directory, relativeError)
	}

	return Location{RepositoryRoot: repositoryRoot, RelativeRoot: filepath.ToSlash(relativeRoot)}, nil
}

// DirtyPaths lists repository-relative paths under the location that differ from HEAD in the
// index or the worktree, untracked files included. Ignored files are not reported.
func (inspector *Inspector) DirtyPaths(location Location) ([]string, error) {
	worktree, openError := openWorktree(location.RepositoryRoot)
	if openError != nil {
		return nil, openError
	}

	status, statusError := worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(worktreeStatusTemplateConstant, location.RepositoryRoot, statusError)
	}

	dirtyPaths := make([]string, 0)
	for statusPath, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		slashPath := filepath.ToSlash(statusPath)
		if !isWithin(slashPath, location.RelativeRoot) {
			continue
		}
		dirtyPaths = append(dirtyPaths, slashPath)
	}
	sort.Strings(dirtyPaths)
	return dirtyPaths, nil
}

func openWorktree(directory string) (*git.Worktree, error) {
	repository, openError := git.PlainOpenWithOptions(directory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(notRepositoryTemplateConstant, directory, openError)
		}
		return nil, fmt.Errorf(openRepositoryTemplateConstant, directory, openError)
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(openWorktreeTemplateConstant, directory, worktreeError)
	}
	return worktree, nil
}

func isWithin(repositoryPath string, relativeRoot string) bool {
	if relativeRoot == currentDirectoryRelativeConstant || len(relativeRoot) == 0 {
		return true
	}
	if strings.HasPrefix(relativeRoot, parentDirectoryPrefixConstant) {
		return false
	}
	return repositoryPath == relativeRoot || strings.HasPrefix(repositoryPath, relativeRoot+pathSeparatorConstant)
}
