// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions scssmigrate uses to
// run git, sass-migrator and the stylesheet formatter in a testable manner.
package execshell
