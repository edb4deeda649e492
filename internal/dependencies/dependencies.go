package dependencies

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/execshell"
	"github.com/temirov/storybranch/internal/gitrepo"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/tracker"
	"github.com/temirov/storybranch/internal/tracker/jira"
	"github.com/temirov/storybranch/internal/tracker/pivotal"
	pathutils "github.com/temirov/storybranch/internal/utils/path"
)

const (
	unsupportedTrackerMessageConstant     = "unsupported tracker"
	unsupportedTrackerTemplateConstant    = "%w %q"
	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	trackerCreationErrorTemplateConstant  = "unable to construct %s tracker: %w"
)

// ErrUnsupportedTracker indicates the configured tracker kind is unknown.
var ErrUnsupportedTracker = errors.New(unsupportedTrackerMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// TrackerFactory builds a tracker from a resolved configuration entry.
type TrackerFactory func(entry config.Entry) (tracker.Tracker, error)

// FileStoreProvider builds the configuration file store for a working directory.
type FileStoreProvider func(workingDirectory string) (*config.FileStore, error)

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveGitExecutor returns existing when set, otherwise a shell executor backed by os/exec.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}

// ResolveWorkingDirectory returns configured when set, otherwise the process working directory.
func ResolveWorkingDirectory(configured string) (string, error) {
	trimmedDirectory := strings.TrimSpace(configured)
	if len(trimmedDirectory) > 0 {
		return trimmedDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

// ResolveFileStore returns the store built by provider, or one rooted at the user's home directory.
func ResolveFileStore(provider FileStoreProvider, workingDirectory string) (*config.FileStore, error) {
	if provider != nil {
		return provider(workingDirectory)
	}
	paths, pathsError := config.DefaultPaths(pathutils.NewHomeExpander(), workingDirectory)
	if pathsError != nil {
		return nil, pathsError
	}
	return config.NewFileStore(paths), nil
}

// ResolveEnvironmentSource returns existing when set, otherwise the PIVOTAL_* environment source.
func ResolveEnvironmentSource(existing config.Source) config.Source {
	if existing != nil {
		return existing
	}
	return config.NewEnvironmentSource()
}

// ResolveTrackerFactory returns existing when set, otherwise NewTracker.
func ResolveTrackerFactory(existing TrackerFactory) TrackerFactory {
	if existing != nil {
		return existing
	}
	return NewTracker
}

// NewTracker builds the tracker named by entry.Tracker. An empty kind selects Pivotal Tracker.
func NewTracker(entry config.Entry) (tracker.Tracker, error) {
	kind := tracker.Kind(strings.ToLower(strings.TrimSpace(entry.Tracker)))
	switch kind {
	case "", tracker.KindPivotalTracker:
		pivotalTracker, creationError := pivotal.NewTracker(pivotal.Options{APIKey: entry.APIKey, ProjectID: entry.ProjectID})
		if creationError != nil {
			return nil, fmt.Errorf(trackerCreationErrorTemplateConstant, tracker.KindPivotalTracker, creationError)
		}
		return pivotalTracker, nil
	case tracker.KindJira:
		jiraTracker, creationError := jira.NewTracker(jira.Options{
			TrackerDomain: entry.TrackerDomain,
			ProjectKey:    entry.ProjectID,
			Username:      entry.Username,
			APIKey:        entry.APIKey,
			ExtraQuery:    entry.ExtraQuery,
		})
		if creationError != nil {
			return nil, fmt.Errorf(trackerCreationErrorTemplateConstant, tracker.KindJira, creationError)
		}
		return jiraTracker, nil
	default:
		return nil, fmt.Errorf(unsupportedTrackerTemplateConstant, ErrUnsupportedTracker, entry.Tracker)
	}
}

// ResolvePrompter returns existing when set. Otherwise interactive terminals get a line-editing
// prompter and other inputs a line reader. The returned function releases the terminal.
func ResolvePrompter(existing prompt.Prompter, input io.Reader, output io.Writer) (prompt.Prompter, func() error) {
	if existing != nil {
		return existing, noopRelease
	}
	if isInteractiveTerminal(input) {
		terminalPrompter := prompt.NewTerminalPrompter(output)
		return terminalPrompter, terminalPrompter.Close
	}
	if input == nil {
		input = os.Stdin
	}
	return prompt.NewIOPrompter(input, output), noopRelease
}

func isInteractiveTerminal(input io.Reader) bool {
	if input != nil && input != io.Reader(os.Stdin) {
		return false
	}
	if !liner.TerminalSupported() {
		return false
	}
	fileInfo, statError := os.Stdin.Stat()
	if statError != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}

func noopRelease() error {
	return nil
}
