package stylesheet

import (
	"strings"
)

const (
	// StylesheetExtension is the extension of SCSS sources.
	StylesheetExtension = ".scss"
	// ShimExtension is the extension sass-migrator gives import-only compatibility files.
	ShimExtension = ".import.scss"
)

// ShimPath returns the import-only shim generated next to a stylesheet: _foo.scss maps to
// _foo.import.scss. Paths that are not SCSS sources or are shims themselves return "".
func ShimPath(stylesheetPath string) string {
	if !strings.HasSuffix(stylesheetPath, StylesheetExtension) || IsShim(stylesheetPath) {
		return ""
	}
	return strings.TrimSuffix(stylesheetPath, StylesheetExtension) + ShimExtension
}

// IsShim reports whether the path names an import-only shim.
func IsShim(stylesheetPath string) bool {
	return strings.HasSuffix(stylesheetPath, ShimExtension)
}
