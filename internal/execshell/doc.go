// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with zap lifecycle logging via ShellExecutor, exposes
// OSCommandRunner for default process execution, and formats human-readable
// descriptions of the git invocations story_branch performs.
package execshell
