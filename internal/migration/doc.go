// Package migration drives the one-time move of the stylesheet tree from @import to the Sass
// module system. A run resets the tree with git, records legacy imports, executes the ordered
// plan of sass-migrator batches and text rewrites, and rebuilds the import-only shims that
// keep legacy consumers compiling.
package migration
