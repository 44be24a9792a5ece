// Package flags provides flag values shared by scssmigrate commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue              = "true"
	toggleFalseCanonicalValue             = "false"
	toggleParseErrorTemplate              = "invalid toggle value %q"
	toggleAnnotationKeyConstant           = "scssmigrate_toggle"
	toggleArgumentTruePlaceholderConstant = "<YES|no>"
	toggleArgumentFalsePlaceholder        = "<yes|NO>"
	longFlagPrefixConstant                = "--"
	flagValueSeparatorConstant            = "="
	toggleValueTypeConstant               = "bool"
)

var (
	trueLiteralSet  = map[string]struct{}{"true": {}, "yes": {}, "on": {}, "1": {}, "t": {}, "y": {}}
	falseLiteralSet = map[string]struct{}{"false": {}, "no": {}, "off": {}, "0": {}, "f": {}, "n": {}}
)

// AddToggleFlag registers a boolean flag that may be given bare (--reset) or with a
// yes/no style value (--reset no, --reset=off).
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleFlagValue(defaultValue, target), name, formatToggleUsage(usage, defaultValue))

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	_ = flagSet.SetAnnotation(name, toggleAnnotationKeyConstant, []string{toggleTrueCanonicalValue})
}

// NormalizeToggleArguments joins "--flag value" into "--flag=value" for toggle flags of the
// flag set so pflag does not treat the value as a positional argument.
func NormalizeToggleArguments(flagSet *pflag.FlagSet, arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if isBareToggle(flagSet, current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}

		normalized = append(normalized, current)
	}

	return normalized
}

func isBareToggle(flagSet *pflag.FlagSet, argument string) bool {
	if flagSet == nil || !strings.HasPrefix(argument, longFlagPrefixConstant) || strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	flag := flagSet.Lookup(strings.TrimPrefix(argument, longFlagPrefixConstant))
	if flag == nil {
		return false
	}
	_, annotated := flag.Annotations[toggleAnnotationKeyConstant]
	return annotated
}

func isToggleLiteral(candidate string) bool {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	if _, isTrue := trueLiteralSet[normalizedCandidate]; isTrue {
		return true
	}
	_, isFalse := falseLiteralSet[normalizedCandidate]
	return isFalse
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholder
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	trimmedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueCanonicalValue
	}

	var parsedValue bool
	if _, isTrue := trueLiteralSet[trimmedValue]; isTrue {
		parsedValue = true
	} else if _, isFalse := falseLiteralSet[trimmedValue]; !isFalse {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeConstant
}
