package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	prefixSeparatorConstant             = "-"
	readPrefixDirectoryTemplateConstant = "prefix group %q: unable to read %s: %w"
)

// ResolvePrefixGroups expands every configured group into its ordered, duplicate-free prefix
// list. Literal prefixes come first, followed by derived prefixes in rule order; renames apply last.
func ResolvePrefixGroups(root string, groups map[string]PrefixGroupConfiguration) (map[string][]string, error) {
	groupNames := make([]string, 0, len(groups))
	for groupName := range groups {
		groupNames = append(groupNames, groupName)
	}
	sort.Strings(groupNames)

	resolved := make(map[string][]string, len(groups))
	for _, groupName := range groupNames {
		group := groups[groupName]

		prefixes := append([]string{}, group.Literal...)
		for _, derivation := range group.Derive {
			derived, deriveError := derivePrefixes(root, derivation)
			if deriveError != nil {
				return nil, fmt.Errorf(readPrefixDirectoryTemplateConstant, groupName, derivation.Directory, deriveError)
			}
			prefixes = append(prefixes, derived...)
		}

		resolved[groupName] = deduplicate(renamePrefixes(prefixes, group.Rename))
	}
	return resolved, nil
}

func derivePrefixes(root string, derivation PrefixDerivation) ([]string, error) {
	directoryEntries, readError := os.ReadDir(filepath.Join(root, filepath.FromSlash(derivation.Directory)))
	if readError != nil {
		return nil, readError
	}

	basePrefix := strings.TrimSuffix(derivation.Prefix, prefixSeparatorConstant) + prefixSeparatorConstant
	prefixes := []string{basePrefix}
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		prefixes = append(prefixes, basePrefix+directoryEntry.Name()+prefixSeparatorConstant)
	}
	return prefixes, nil
}

// renamePrefixes applies the first matching rename to each prefix. A prefix that already
// starts with a rename target is left alone, so derived names such as mat-mdc-button- are
// not renamed twice.
func renamePrefixes(prefixes []string, renames []PrefixRename) []string {
	if len(renames) == 0 {
		return prefixes
	}
	renamed := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		for _, rename := range renames {
			if len(rename.From) == 0 {
				continue
			}
			if len(rename.To) > 0 && strings.HasPrefix(prefix, rename.To) {
				break
			}
			if strings.HasPrefix(prefix, rename.From) {
				prefix = rename.To + strings.TrimPrefix(prefix, rename.From)
				break
			}
		}
		renamed = append(renamed, prefix)
	}
	return renamed
}

func deduplicate(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, duplicate := seen[value]; duplicate {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}
