package migration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/scssmigrate/internal/stylesheet"
)

// Operation names accepted in plan steps.
const (
	OperationMigrate         = "migrate"
	OperationHideImports     = "hide-imports"
	OperationRestoreImports  = "restore-imports"
	OperationRemoveShims     = "remove-shims"
	OperationReinsertImports = "reinsert-imports"
	OperationFormat          = "format"
	OperationWrapLines       = "wrap-lines"
)

const (
	defaultRootDirectoryConstant             = "src"
	defaultMigratorExecutableConstant        = "sass-migrator"
	defaultNamespaceConstant                 = "@material"
	defaultWrapLimitConstant                 = 100
	defaultShimPatternConstant               = "**/*.import.scss"
	defaultPartialShimPatternConstant        = "**/_*.import.scss"
	defaultFormatterWorkingDirectoryConstant = ".."
	rootMissingMessageConstant               = "migration root must be provided"
	migratorMissingMessageConstant           = "migrator executable must be provided"
	unknownOperationTemplateConstant         = "step %d: unknown operation %q"
	missingPatternTemplateConstant           = "step %d (%s): pattern must be provided"
	invalidPatternTemplateConstant           = "step %d (%s): invalid pattern %q"
	unknownPrefixGroupTemplateConstant       = "step %d (%s): unknown prefix group %q"
	missingNamespaceTemplateConstant         = "step %d (%s): namespace must be configured"
	invalidLimitTemplateConstant             = "step %d (%s): limit must be positive, got %d"
	invalidIgnorePatternTemplateConstant     = "invalid ignore pattern %q"
	invalidDerivationTemplateConstant        = "prefix group %q: derive rules need a directory and a prefix"
)

var (
	errRootMissing     = errors.New(rootMissingMessageConstant)
	errMigratorMissing = errors.New(migratorMissingMessageConstant)
)

// Configuration describes a complete migration run.
type Configuration struct {
	Root         string                              `mapstructure:"root"`
	Namespace    string                              `mapstructure:"namespace"`
	Marker       string                              `mapstructure:"marker"`
	Ignore       []string                            `mapstructure:"ignore"`
	Tools        ToolsConfiguration                  `mapstructure:"tools"`
	PrefixGroups map[string]PrefixGroupConfiguration `mapstructure:"prefix_groups"`
	Steps        []StepConfiguration                 `mapstructure:"steps"`
}

// ToolsConfiguration names the external executables invoked during a run.
type ToolsConfiguration struct {
	Migrator  string                 `mapstructure:"migrator"`
	Timeout   time.Duration          `mapstructure:"timeout"`
	Formatter FormatterConfiguration `mapstructure:"formatter"`
}

// FormatterConfiguration describes the formatter run after shims are rebuilt.
type FormatterConfiguration struct {
	Command   string   `mapstructure:"command"`
	Arguments []string `mapstructure:"arguments"`
	// WorkingDirectory is resolved against the migration root when relative.
	WorkingDirectory string `mapstructure:"working_directory"`
}

// PrefixGroupConfiguration lists the rules producing one named set of removable prefixes.
type PrefixGroupConfiguration struct {
	Literal []string           `mapstructure:"literal"`
	Derive  []PrefixDerivation `mapstructure:"derive"`
	Rename  []PrefixRename     `mapstructure:"rename"`
}

// PrefixDerivation yields "<prefix>-" and "<prefix>-<subdirectory>-" for every immediate
// subdirectory of Directory.
type PrefixDerivation struct {
	Directory string `mapstructure:"directory"`
	Prefix    string `mapstructure:"prefix"`
}

// PrefixRename replaces a leading From with To on every prefix of the group.
type PrefixRename struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// StepConfiguration is one entry of the ordered plan. Fields apply per operation.
type StepConfiguration struct {
	Operation       string   `mapstructure:"operation"`
	Description     string   `mapstructure:"description"`
	Pattern         string   `mapstructure:"pattern"`
	Exclude         []string `mapstructure:"exclude"`
	Prefixes        string   `mapstructure:"prefixes"`
	Forward         bool     `mapstructure:"forward"`
	TolerateFailure bool     `mapstructure:"tolerate_failure"`
	Keep            []string `mapstructure:"keep"`
	Limit           int      `mapstructure:"limit"`
}

// DefaultConfiguration returns the baseline values used when configuration omits them.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:      defaultRootDirectoryConstant,
		Namespace: defaultNamespaceConstant,
		Marker:    stylesheet.DefaultHiddenImportMarker,
		Tools: ToolsConfiguration{
			Migrator:  defaultMigratorExecutableConstant,
			Formatter: FormatterConfiguration{WorkingDirectory: defaultFormatterWorkingDirectoryConstant},
		},
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys below the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + ".root":                              defaults.Root,
		prefix + ".namespace":                         defaults.Namespace,
		prefix + ".marker":                            defaults.Marker,
		prefix + ".tools.migrator":                    defaults.Tools.Migrator,
		prefix + ".tools.timeout":                     defaults.Tools.Timeout,
		prefix + ".tools.formatter.working_directory": defaults.Tools.Formatter.WorkingDirectory,
	}
}

// Sanitize trims values, drops empty list entries and fills per-operation defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Root = strings.TrimSpace(configuration.Root)
	sanitized.Namespace = strings.TrimSpace(configuration.Namespace)
	if len(sanitized.Marker) == 0 {
		sanitized.Marker = defaults.Marker
	}
	sanitized.Ignore = sanitizeList(configuration.Ignore)

	sanitized.Tools.Migrator = strings.TrimSpace(configuration.Tools.Migrator)
	if len(sanitized.Tools.Migrator) == 0 {
		sanitized.Tools.Migrator = defaults.Tools.Migrator
	}
	sanitized.Tools.Formatter.Command = strings.TrimSpace(configuration.Tools.Formatter.Command)
	sanitized.Tools.Formatter.Arguments = sanitizeList(configuration.Tools.Formatter.Arguments)
	sanitized.Tools.Formatter.WorkingDirectory = strings.TrimSpace(configuration.Tools.Formatter.WorkingDirectory)
	if len(sanitized.Tools.Formatter.WorkingDirectory) == 0 {
		sanitized.Tools.Formatter.WorkingDirectory = defaults.Tools.Formatter.WorkingDirectory
	}

	sanitized.PrefixGroups = make(map[string]PrefixGroupConfiguration, len(configuration.PrefixGroups))
	for groupName, group := range configuration.PrefixGroups {
		sanitized.PrefixGroups[strings.TrimSpace(groupName)] = PrefixGroupConfiguration{
			Literal: sanitizeList(group.Literal),
			Derive:  append([]PrefixDerivation(nil), group.Derive...),
			Rename:  append([]PrefixRename(nil), group.Rename...),
		}
	}

	sanitized.Steps = make([]StepConfiguration, 0, len(configuration.Steps))
	for _, step := range configuration.Steps {
		sanitized.Steps = append(sanitized.Steps, step.sanitize())
	}

	return sanitized
}

func (step StepConfiguration) sanitize() StepConfiguration {
	sanitized := step
	sanitized.Operation = strings.ToLower(strings.TrimSpace(step.Operation))
	sanitized.Description = strings.TrimSpace(step.Description)
	sanitized.Pattern = strings.TrimSpace(step.Pattern)
	sanitized.Exclude = sanitizeList(step.Exclude)
	sanitized.Prefixes = strings.TrimSpace(step.Prefixes)
	sanitized.Keep = sanitizeList(step.Keep)

	switch sanitized.Operation {
	case OperationRemoveShims:
		if len(sanitized.Pattern) == 0 {
			sanitized.Pattern = defaultShimPatternConstant
		}
		if step.Keep == nil {
			sanitized.Keep = []string{defaultPartialShimPatternConstant}
		}
	case OperationWrapLines:
		if len(sanitized.Pattern) == 0 {
			sanitized.Pattern = defaultShimPatternConstant
		}
		if sanitized.Limit == 0 {
			sanitized.Limit = defaultWrapLimitConstant
		}
	}
	if len(sanitized.Description) == 0 {
		sanitized.Description = strings.TrimSpace(sanitized.Operation + " " + sanitized.Pattern)
	}
	return sanitized
}

// Validate reports the first structural problem of a sanitized configuration.
func (configuration Configuration) Validate() error {
	if len(configuration.Root) == 0 {
		return errRootMissing
	}
	if len(configuration.Tools.Migrator) == 0 {
		return errMigratorMissing
	}
	for _, ignorePattern := range configuration.Ignore {
		if !doublestar.ValidatePattern(ignorePattern) {
			return fmt.Errorf(invalidIgnorePatternTemplateConstant, ignorePattern)
		}
	}
	for groupName, group := range configuration.PrefixGroups {
		for _, derivation := range group.Derive {
			if len(strings.TrimSpace(derivation.Directory)) == 0 || len(strings.TrimSpace(derivation.Prefix)) == 0 {
				return fmt.Errorf(invalidDerivationTemplateConstant, groupName)
			}
		}
	}

	for stepIndex, step := range configuration.Steps {
		stepNumber := stepIndex + 1
		switch step.Operation {
		case OperationMigrate, OperationHideImports, OperationRestoreImports, OperationRemoveShims, OperationWrapLines:
			if len(step.Pattern) == 0 {
				return fmt.Errorf(missingPatternTemplateConstant, stepNumber, step.Description)
			}
		case OperationReinsertImports, OperationFormat:
		default:
			return fmt.Errorf(unknownOperationTemplateConstant, stepNumber, step.Operation)
		}

		for _, pattern := range append(append([]string{step.Pattern}, step.Exclude...), step.Keep...) {
			if len(pattern) > 0 && !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf(invalidPatternTemplateConstant, stepNumber, step.Description, pattern)
			}
		}

		if len(step.Prefixes) > 0 {
			if _, groupExists := configuration.PrefixGroups[step.Prefixes]; !groupExists {
				return fmt.Errorf(unknownPrefixGroupTemplateConstant, stepNumber, step.Description, step.Prefixes)
			}
		}
		if (step.Operation == OperationHideImports || step.Operation == OperationRestoreImports) && len(configuration.Namespace) == 0 {
			return fmt.Errorf(missingNamespaceTemplateConstant, stepNumber, step.Description)
		}
		if step.Operation == OperationWrapLines && step.Limit <= 0 {
			return fmt.Errorf(invalidLimitTemplateConstant, stepNumber, step.Description, step.Limit)
		}
	}
	return nil
}

func sanitizeList(values []string) []string {
	sanitized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
