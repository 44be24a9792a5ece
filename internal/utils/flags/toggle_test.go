package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--reset"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--reset", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitTrueUppercase", arguments: []string{"--reset", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--reset", "no"}, expectedValue: false, expectedChanged: true},
		{name: "AssignedOff", arguments: []string{"--reset=off"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "reset", false, "Reset only")

			parseError := command.ParseFlags(NormalizeToggleArguments(command.Flags(), testCase.arguments))
			require.NoError(t, parseError)

			require.Equal(t, testCase.expectedValue, toggleValue)

			flag := command.Flags().Lookup("reset")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "reset", false, "Reset only")

	parseError := command.ParseFlags(NormalizeToggleArguments(command.Flags(), []string{"--reset=maybe"}))
	require.Error(t, parseError)
	require.False(t, toggleValue)
}

func TestNormalizeToggleArgumentsLeavesOtherArgumentsAlone(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "reset", false, "Reset only")
	command.Flags().String("root", "", "root directory")

	normalized := NormalizeToggleArguments(command.Flags(), []string{"--root", "yes", "--reset", "src", "--", "--reset", "no"})

	require.Equal(t, []string{"--root", "yes", "--reset", "src", "--", "--reset", "no"}, normalized)
}
