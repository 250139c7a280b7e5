// Package execshell provides structured helpers for invoking git.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions chronicle uses
// to query repository state and history in a testable manner.
package execshell
