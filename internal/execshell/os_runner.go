package execshell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	terminalPromptVariableConstant        = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant   = "0"
)

// OSCommandRunner runs commands through os/exec with no standard input. Git is told never to
// prompt for credentials, so a missing credential fails the command instead of blocking it.
type OSCommandRunner struct {
	environment func() []string
}

// NewOSCommandRunner constructs a runner inheriting the current process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{environment: os.Environ}
}

// Run executes command and reports a non-zero exit code through ExecutionResult. The error is
// reserved for commands that could not be started.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = runner.commandEnvironment()

	var standardOutput strings.Builder
	var standardError strings.Builder
	executable.Stdout = &standardOutput
	executable.Stderr = &standardError

	runError := executable.Run()
	result := ExecutionResult{StandardOutput: standardOutput.String(), StandardError: standardError.String()}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

func (runner *OSCommandRunner) commandEnvironment() []string {
	environment := []string{}
	if runner.environment != nil {
		environment = append(environment, runner.environment()...)
	}
	return append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, terminalPromptVariableConstant, terminalPromptDisabledValueConstant))
}
