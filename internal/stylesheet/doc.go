// Package stylesheet implements the pure text transformations applied to SCSS sources
// around sass-migrator invocations: legacy import extraction, namespace hiding, import
// ordering, long line rewrapping and shim path naming.
package stylesheet
