package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationVersionFlagPrintsVersionAndExits(t *testing.T) {
	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return "v1.2.0"
	}

	var output bytes.Buffer
	application.versionOutput = &output

	exitCode := -1
	sentinel := "version-exit"
	application.exitFunction = func(code int) {
		exitCode = code
		panic(sentinel)
	}

	require.PanicsWithValue(t, sentinel, func() {
		_ = application.Execute(context.Background(), []string{"--version"})
	})

	require.Equal(t, "scssmigrate version: v1.2.0\n", output.String())
	require.Equal(t, 0, exitCode)
}

func TestConfigurationSearchPathsHonourEnvironment(t *testing.T) {
	testCases := []struct {
		name          string
		value         string
		expectedPaths []string
	}{
		{name: "unset", value: "", expectedPaths: []string{"."}},
		{name: "single", value: "/etc/scssmigrate", expectedPaths: []string{"/etc/scssmigrate"}},
		{name: "list_with_blanks", value: "/etc/scssmigrate: :/home/user/.scssmigrate", expectedPaths: []string{"/etc/scssmigrate", "/home/user/.scssmigrate"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(configurationSearchPathEnvironmentName, testCase.value)
			require.Equal(t, testCase.expectedPaths, configurationSearchPaths())
		})
	}
}

func TestPersistentFlagsOverrideLoggingConfiguration(t *testing.T) {
	t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())

	application := NewApplication()
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))

	require.NoError(t, application.initializeConfiguration(application.rootCommand))
	require.Equal(t, "debug", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.NotEmpty(t, application.configuration.Migration.Steps)
	require.NotNil(t, application.logger)
}
