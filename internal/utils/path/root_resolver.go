package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant                  = "~"
	emptyRootPathMessageConstant         = "root path must not be empty"
	rootPathResolutionTemplateConstant   = "unable to resolve root path %s: %w"
	rootPathNotDirectoryTemplateConstant = "root path %s is not a directory"
)

var errEmptyRootPath = errors.New(emptyRootPathMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// RootResolver turns user supplied directory arguments into absolute, existing directories.
type RootResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
}

// NewRootResolver constructs a RootResolver using the operating system home lookup.
func NewRootResolver() *RootResolver {
	return NewRootResolverWithProvider(os.UserHomeDir)
}

// NewRootResolverWithProvider constructs a RootResolver with a custom home directory provider.
func NewRootResolverWithProvider(provider HomeDirectoryProvider) *RootResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &RootResolver{homeDirectoryProvider: provider}
}

// Expand resolves a leading tilde to the user's home directory.
func (resolver *RootResolver) Expand(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}
	homeDirectory, homeError := resolver.homeDirectoryProvider()
	if homeError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}
	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if !strings.HasPrefix(remainder, "/") && !strings.HasPrefix(remainder, string(os.PathSeparator)) {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder[1:])
}

// Resolve expands, absolutizes and validates the root directory.
func (resolver *RootResolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", errEmptyRootPath
	}

	absolutePath, absoluteError := filepath.Abs(resolver.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(rootPathResolutionTemplateConstant, trimmedPath, absoluteError)
	}

	directoryInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(rootPathResolutionTemplateConstant, trimmedPath, statError)
	}
	if !directoryInfo.IsDir() {
		return "", fmt.Errorf(rootPathNotDirectoryTemplateConstant, absolutePath)
	}

	return filepath.Clean(absolutePath), nil
}
