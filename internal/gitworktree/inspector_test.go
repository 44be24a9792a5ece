package gitworktree_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/scssmigrate/internal/gitworktree"
)

const (
	testSourceDirectoryConstant = "src"
	testTrackedFileConstant     = "src/cdk/_overlay.scss"
	testOutsideFileConstant     = "README.md"
	testAuthorNameConstant      = "Migration Test"
	testAuthorEmailConstant     = "migration@example.com"
	testCommitMessageConstant   = "initial"
	testOriginalContentConstant = "$cdk-overlay-z-index: 1000;\n"
	testModifiedContentConstant = "$z-index: 1000;\n"
	testUntrackedFileConstant   = "src/cdk/_overlay.import.scss"
	testFilePermissionsConstant = 0o644
	testDirectoryModeConstant   = 0o755
)

func initRepository(testInstance *testing.T) string {
	testInstance.Helper()

	repositoryRoot := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryRoot, false)
	require.NoError(testInstance, initError)

	writeFile(testInstance, repositoryRoot, testTrackedFileConstant, testOriginalContentConstant)
	writeFile(testInstance, repositoryRoot, testOutsideFileConstant, "# components\n")

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(testTrackedFileConstant)
	require.NoError(testInstance, addError)
	_, addOutsideError := worktree.Add(testOutsideFileConstant)
	require.NoError(testInstance, addOutsideError)

	_, commitError := worktree.Commit(testCommitMessageConstant, &git.CommitOptions{
		Author: &object.Signature{Name: testAuthorNameConstant, Email: testAuthorEmailConstant, When: time.Now()},
	})
	require.NoError(testInstance, commitError)

	return repositoryRoot
}

func writeFile(testInstance *testing.T, repositoryRoot string, relativePath string, content string) {
	testInstance.Helper()
	absolutePath := filepath.Join(repositoryRoot, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryModeConstant))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFilePermissionsConstant))
}

func TestInspectorLocate(testInstance *testing.T) {
	repositoryRoot := initRepository(testInstance)
	inspector := gitworktree.NewInspector()

	location, locateError := inspector.Locate(filepath.Join(repositoryRoot, testSourceDirectoryConstant))
	require.NoError(testInstance, locateError)
	require.Equal(testInstance, testSourceDirectoryConstant, location.RelativeRoot)

	resolvedRoot, resolveError := filepath.EvalSymlinks(repositoryRoot)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, resolvedRoot, location.RepositoryRoot)

	rootLocation, rootError := inspector.Locate(repositoryRoot)
	require.NoError(testInstance, rootError)
	require.Equal(testInstance, ".", rootLocation.RelativeRoot)
}

func TestInspectorLocateOutsideRepository(testInstance *testing.T) {
	_, locateError := gitworktree.NewInspector().Locate(testInstance.TempDir())
	require.Error(testInstance, locateError)
	require.ErrorIs(testInstance, locateError, gitworktree.ErrNotRepository)
}

func TestInspectorDirtyPaths(testInstance *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(testInstance *testing.T, repositoryRoot string)
		expectedPaths []string
	}{
		{
			name:          "clean_tree",
			mutate:        func(*testing.T, string) {},
			expectedPaths: []string{},
		},
		{
			name: "modified_and_untracked_under_root",
			mutate: func(testInstance *testing.T, repositoryRoot string) {
				writeFile(testInstance, repositoryRoot, testTrackedFileConstant, testModifiedContentConstant)
				writeFile(testInstance, repositoryRoot, testUntrackedFileConstant, "@forward 'overlay';\n")
			},
			expectedPaths: []string{testUntrackedFileConstant, testTrackedFileConstant},
		},
		{
			name: "changes_outside_root_ignored",
			mutate: func(testInstance *testing.T, repositoryRoot string) {
				writeFile(testInstance, repositoryRoot, testOutsideFileConstant, "# changed\n")
			},
			expectedPaths: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryRoot := initRepository(testInstance)
			testCase.mutate(testInstance, repositoryRoot)

			inspector := gitworktree.NewInspector()
			location, locateError := inspector.Locate(filepath.Join(repositoryRoot, testSourceDirectoryConstant))
			require.NoError(testInstance, locateError)

			dirtyPaths, statusError := inspector.DirtyPaths(location)
			require.NoError(testInstance, statusError)
			require.Equal(testInstance, testCase.expectedPaths, dirtyPaths)
		})
	}
}
