package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scssmigrate/internal/utils"
)

const (
	testEnvironmentPrefixConstant      = "TESTSCSSMIGRATE"
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
	testConfigFileNameConstant         = "config.yaml"
	testDefaultLogLevelConstant        = "info"
	testConfigurationPermissions       = 0o600
	testEmbeddedConfigurationConstant  = "common:\n  log_level: debug\nmigration:\n  root: src\n  steps:\n    - operation: migrate\n      pattern: \"cdk/**/*.scss\"\n    - operation: remove-shims\n"
	testUserConfigurationConstant      = "migration:\n  root: styles\n  steps:\n    - operation: format\n"
	testRootOnlyConfigurationConstant  = "migration:\n  root: styles\n"
	testSecondaryConfigurationConstant = "migration:\n  root: secondary\n"
)

type configurationFixture struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Migration struct {
		Root    string        `mapstructure:"root"`
		Ignore  []string      `mapstructure:"ignore"`
		Timeout time.Duration `mapstructure:"timeout"`
		Steps   []struct {
			Operation string `mapstructure:"operation"`
			Pattern   string `mapstructure:"pattern"`
		} `mapstructure:"steps"`
	} `mapstructure:"migration"`
}

func writeConfiguration(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(directory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), testConfigurationPermissions))
	return configurationPath
}

func TestConfigurationLoaderLayers(testInstance *testing.T) {
	testCases := []struct {
		name               string
		userConfiguration  string
		environment        map[string]string
		expectedLogLevel   string
		expectedRoot       string
		expectedOperations []string
		expectFileUsed     bool
	}{
		{
			name:               "embedded_only",
			expectedLogLevel:   "debug",
			expectedRoot:       "src",
			expectedOperations: []string{"migrate", "remove-shims"},
		},
		{
			name:               "user_file_replaces_step_list",
			userConfiguration:  testUserConfigurationConstant,
			expectedLogLevel:   "debug",
			expectedRoot:       "styles",
			expectedOperations: []string{"format"},
			expectFileUsed:     true,
		},
		{
			name:               "user_file_keeps_unmentioned_keys",
			userConfiguration:  testRootOnlyConfigurationConstant,
			expectedLogLevel:   "debug",
			expectedRoot:       "styles",
			expectedOperations: []string{"migrate", "remove-shims"},
			expectFileUsed:     true,
		},
		{
			name:               "environment_wins",
			userConfiguration:  testRootOnlyConfigurationConstant,
			environment:        map[string]string{"TESTSCSSMIGRATE_MIGRATION_ROOT": "from-environment", "TESTSCSSMIGRATE_COMMON_LOG_LEVEL": "error"},
			expectedLogLevel:   "error",
			expectedRoot:       "from-environment",
			expectedOperations: []string{"migrate", "remove-shims"},
			expectFileUsed:     true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			expectedFile := ""
			if len(testCase.userConfiguration) > 0 {
				expectedFile = writeConfiguration(testInstance, searchDirectory, testCase.userConfiguration)
			}
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})
			loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

			var configuration configurationFixture
			metadata, loadError := loader.LoadConfiguration("", map[string]any{"common.log_level": testDefaultLogLevelConstant}, &configuration)
			require.NoError(testInstance, loadError)

			require.True(testInstance, metadata.EmbeddedConfigurationUsed)
			require.Equal(testInstance, testCase.expectedLogLevel, configuration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedRoot, configuration.Migration.Root)
			operations := []string{}
			for _, step := range configuration.Migration.Steps {
				operations = append(operations, step.Operation)
			}
			require.Equal(testInstance, testCase.expectedOperations, operations)
			if testCase.expectFileUsed {
				require.Equal(testInstance, expectedFile, metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderDefaultsWithoutEmbeddedPlan(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})

	var configuration configurationFixture
	metadata, loadError := loader.LoadConfiguration("", map[string]any{"common.log_level": testDefaultLogLevelConstant, "migration.root": "src"}, &configuration)
	require.NoError(testInstance, loadError)
	require.False(testInstance, metadata.EmbeddedConfigurationUsed)
	require.Equal(testInstance, testDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, "src", configuration.Migration.Root)
}

func TestConfigurationLoaderFirstSearchPathWins(testInstance *testing.T) {
	primaryDirectory := testInstance.TempDir()
	secondaryDirectory := testInstance.TempDir()
	primaryFile := writeConfiguration(testInstance, primaryDirectory, testRootOnlyConfigurationConstant)
	writeConfiguration(testInstance, secondaryDirectory, testSecondaryConfigurationConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{primaryDirectory, secondaryDirectory})

	var configuration configurationFixture
	metadata, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "styles", configuration.Migration.Root)
	require.Equal(testInstance, primaryFile, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderExplicitFile(testInstance *testing.T) {
	explicitDirectory := testInstance.TempDir()
	explicitFile := writeConfiguration(testInstance, explicitDirectory, testSecondaryConfigurationConstant)
	searchDirectory := testInstance.TempDir()
	writeConfiguration(testInstance, searchDirectory, testRootOnlyConfigurationConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})

	var configuration configurationFixture
	metadata, loadError := loader.LoadConfiguration(explicitFile, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "secondary", configuration.Migration.Root)
	require.Equal(testInstance, explicitFile, metadata.ConfigFileUsed)

	missingFile := filepath.Join(explicitDirectory, "missing.yaml")
	_, missingError := loader.LoadConfiguration(missingFile, nil, &configuration)
	require.EqualError(testInstance, missingError, "configuration file "+missingFile+" does not exist")
}

func TestConfigurationLoaderRejectsMalformedSources(testInstance *testing.T) {
	testInstance.Run("embedded", func(testInstance *testing.T) {
		loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
		loader.SetEmbeddedConfiguration([]byte("migration: [unterminated"), testConfigurationTypeConstant)

		var configuration configurationFixture
		_, loadError := loader.LoadConfiguration("", nil, &configuration)
		require.ErrorContains(testInstance, loadError, "failed to merge embedded configuration")
	})

	testInstance.Run("user_file", func(testInstance *testing.T) {
		searchDirectory := testInstance.TempDir()
		writeConfiguration(testInstance, searchDirectory, "migration:\n  root: [unterminated\n")
		loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})

		var configuration configurationFixture
		_, loadError := loader.LoadConfiguration("", nil, &configuration)
		require.ErrorContains(testInstance, loadError, "failed to read configuration")
	})
}

func TestConfigurationLoaderDecodesEnvironmentLists(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentPrefixConstant+"_MIGRATION_IGNORE", "**/*.import.scss,material/_theming.scss")
	testInstance.Setenv(testEnvironmentPrefixConstant+"_MIGRATION_TIMEOUT", "90s")

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
	loader.SetEmbeddedConfiguration([]byte("migration:\n  ignore:\n    - \"**/test-theming-bundle.scss\"\n  timeout: 0s\n"), testConfigurationTypeConstant)

	var configuration configurationFixture
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"**/*.import.scss", "material/_theming.scss"}, configuration.Migration.Ignore)
	require.Equal(testInstance, 90*time.Second, configuration.Migration.Timeout)
}
