package migration_test

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scssmigrate/internal/execshell"
	"github.com/temirov/scssmigrate/internal/gitworktree"
)

const (
	testFormatterCommandConstant = "yarn"
	testMigratorModuleConstant   = "module"
	testForwardFlagConstant      = "--forward=import-only"
	testRemovePrefixFlagConstant = "--remove-prefix="
	testFilePermissionsConstant  = 0o644
	testDirectoryModeConstant    = 0o755
)

var testLegacyImportLinePattern = regexp.MustCompile(`(?m)^@import `)

// scriptedRunner records every command and answers per executable. The migrator behaves like
// sass-migrator on the small fixtures used here.
type scriptedRunner struct {
	recordedCommands []execshell.ShellCommand
	gitResult        execshell.ExecutionResult
	migratorResult   execshell.ExecutionResult
	migratorFailures map[int]execshell.ExecutionResult
	formatterResult  execshell.ExecutionResult
	formatterError   error
	migratorCalls    int
}

func (runner *scriptedRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	switch command.Name {
	case execshell.CommandGit:
		return runner.gitResult, nil
	case execshell.CommandSassMigrator:
		runner.migratorCalls++
		if failure, failing := runner.migratorFailures[runner.migratorCalls]; failing {
			return failure, nil
		}
		if migrationError := fakeMigrate(command); migrationError != nil {
			return execshell.ExecutionResult{}, migrationError
		}
		return runner.migratorResult, nil
	default:
		return runner.formatterResult, runner.formatterError
	}
}

func (runner *scriptedRunner) commandsNamed(name execshell.CommandName) []execshell.ShellCommand {
	matching := []execshell.ShellCommand{}
	for _, command := range runner.recordedCommands {
		if command.Name == name {
			matching = append(matching, command)
		}
	}
	return matching
}

// fakeMigrate turns leading @import statements into @use, strips removed prefixes from
// variables, and writes an import-only shim for forwarded files and files that lost prefixes.
func fakeMigrate(command execshell.ShellCommand) error {
	forward := false
	var prefixes []string
	var files []string
	for _, argument := range command.Details.Arguments[1:] {
		switch {
		case argument == testForwardFlagConstant:
			forward = true
		case strings.HasPrefix(argument, testRemovePrefixFlagConstant):
			prefixes = strings.Split(strings.TrimPrefix(argument, testRemovePrefixFlagConstant), ",")
		default:
			files = append(files, argument)
		}
	}

	for _, file := range files {
		filePath := filepath.Join(command.Details.WorkingDirectory, filepath.FromSlash(file))
		content, readError := os.ReadFile(filePath)
		if readError != nil {
			return readError
		}

		migrated := testLegacyImportLinePattern.ReplaceAllString(string(content), "@use ")
		renamedPrefix := ""
		for _, prefix := range prefixes {
			if strings.Contains(migrated, "$"+prefix) && len(renamedPrefix) == 0 {
				renamedPrefix = prefix
			}
		}
		for _, prefix := range prefixes {
			migrated = strings.ReplaceAll(migrated, "$"+prefix, "$")
		}
		if writeError := os.WriteFile(filePath, []byte(migrated), testFilePermissionsConstant); writeError != nil {
			return writeError
		}

		if !forward && len(renamedPrefix) == 0 {
			continue
		}
		moduleName := strings.TrimPrefix(strings.TrimSuffix(path.Base(file), ".scss"), "_")
		shimContent := "@forward '" + moduleName + "';\n"
		if len(renamedPrefix) > 0 {
			shimContent = "@forward '" + moduleName + "' as " + renamedPrefix + "*;\n"
		}
		shimPath := strings.TrimSuffix(filePath, ".scss") + ".import.scss"
		if writeError := os.WriteFile(shimPath, []byte(shimContent), testFilePermissionsConstant); writeError != nil {
			return writeError
		}
	}
	return nil
}

type stubWorktreeInspector struct {
	locateError   error
	dirtyPaths    []string
	locatedRoots  []string
	statusQueries int
}

func (inspector *stubWorktreeInspector) Locate(directory string) (gitworktree.Location, error) {
	inspector.locatedRoots = append(inspector.locatedRoots, directory)
	if inspector.locateError != nil {
		return gitworktree.Location{}, inspector.locateError
	}
	return gitworktree.Location{RepositoryRoot: directory, RelativeRoot: "."}, nil
}

func (inspector *stubWorktreeInspector) DirtyPaths(gitworktree.Location) ([]string, error) {
	inspector.statusQueries++
	return inspector.dirtyPaths, nil
}

func writeTree(testInstance *testing.T, root string, files map[string]string) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryModeConstant))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFilePermissionsConstant))
	}
}

func readFile(testInstance *testing.T, root string, relativePath string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(filepath.Join(root, filepath.FromSlash(relativePath)))
	require.NoError(testInstance, readError)
	return string(content)
}

func fileExists(root string, relativePath string) bool {
	_, statError := os.Stat(filepath.Join(root, filepath.FromSlash(relativePath)))
	return statError == nil
}
