package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/execshell"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/tracker"
)

const (
	argumentsSeparatorConstant       = " "
	homeDirectoryNameConstant        = "home"
	homeDirectoryPermissionsConstant = 0o755
)

// Git argument lists issued by the repository manager, joined with spaces.
const (
	GitBranchListArguments    = "branch --all --format=%(refname)"
	GitCurrentBranchArguments = "rev-parse --abbrev-ref HEAD"
	GitStatusArguments        = "status -s"
)

// GitExecutorStub answers git invocations keyed by their space-joined arguments.
type GitExecutorStub struct {
	Outputs             map[string]string
	Errors              map[string]error
	ExecutedGitCommands []execshell.CommandDetails
}

// ExecuteGit records the invocation and returns the configured output or error.
func (executor *GitExecutorStub) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.ExecutedGitCommands = append(executor.ExecutedGitCommands, details)
	key := strings.Join(details.Arguments, argumentsSeparatorConstant)
	if executionError, exists := executor.Errors[key]; exists {
		return execshell.ExecutionResult{}, executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.Outputs[key]}, nil
}

// ExecutedArguments returns the space-joined arguments of every recorded invocation.
func (executor *GitExecutorStub) ExecutedArguments() []string {
	executed := make([]string, 0, len(executor.ExecutedGitCommands))
	for _, details := range executor.ExecutedGitCommands {
		executed = append(executed, strings.Join(details.Arguments, argumentsSeparatorConstant))
	}
	return executed
}

// TrackerStub implements tracker.Tracker from fixed data.
type TrackerStub struct {
	IsValid         bool
	StoryList       []tracker.Story
	StoriesError    error
	StoryError      error
	StartError      error
	RequestedIDs    []string
	StartedStoryIDs []string
}

// Valid reports IsValid.
func (stub *TrackerStub) Valid() bool {
	return stub.IsValid
}

// Stories returns StoryList or StoriesError.
func (stub *TrackerStub) Stories(context.Context) ([]tracker.Story, error) {
	if stub.StoriesError != nil {
		return nil, stub.StoriesError
	}
	return append([]tracker.Story{}, stub.StoryList...), nil
}

// StoryByID returns the story of StoryList with the requested id.
func (stub *TrackerStub) StoryByID(_ context.Context, storyID string) (tracker.Story, error) {
	stub.RequestedIDs = append(stub.RequestedIDs, storyID)
	if stub.StoryError != nil {
		return tracker.Story{}, stub.StoryError
	}
	for _, story := range stub.StoryList {
		if story.ID == storyID {
			return story, nil
		}
	}
	return tracker.Story{}, tracker.ErrStoryNotFound
}

// StartStory records the id and returns the story in the started state.
func (stub *TrackerStub) StartStory(executionContext context.Context, storyID string) (tracker.Story, error) {
	if stub.StartError != nil {
		return tracker.Story{}, stub.StartError
	}
	story, storyError := stub.StoryByID(executionContext, storyID)
	if storyError != nil {
		return tracker.Story{}, storyError
	}
	stub.StartedStoryIDs = append(stub.StartedStoryIDs, storyID)
	story.State = "started"
	return story, nil
}

// TrackerFactory returns a factory that always yields the stub and records the entries it receives.
func (stub *TrackerStub) TrackerFactory(receivedEntries *[]config.Entry) func(config.Entry) (tracker.Tracker, error) {
	return func(entry config.Entry) (tracker.Tracker, error) {
		if receivedEntries != nil {
			*receivedEntries = append(*receivedEntries, entry)
		}
		return stub, nil
	}
}

// PrompterStub answers prompts from queues. An exhausted queue aborts the prompt.
type PrompterStub struct {
	Answers       []string
	Selections    []int
	Confirmations []bool
	Questions     []string
	Defaults      []string
	Options       [][]string
}

// Ask records the question and pops the next answer. Empty answers yield defaultValue.
func (stub *PrompterStub) Ask(question string, defaultValue string) (string, error) {
	stub.Questions = append(stub.Questions, question)
	stub.Defaults = append(stub.Defaults, defaultValue)
	if len(stub.Answers) == 0 {
		return "", prompt.ErrPromptAborted
	}
	answer := stub.Answers[0]
	stub.Answers = stub.Answers[1:]
	if len(answer) == 0 {
		return defaultValue, nil
	}
	return answer, nil
}

// Confirm records the question and pops the next confirmation.
func (stub *PrompterStub) Confirm(question string) (bool, error) {
	stub.Questions = append(stub.Questions, question)
	if len(stub.Confirmations) == 0 {
		return false, prompt.ErrPromptAborted
	}
	confirmation := stub.Confirmations[0]
	stub.Confirmations = stub.Confirmations[1:]
	return confirmation, nil
}

// Select records the question and options and pops the next selection.
func (stub *PrompterStub) Select(question string, options []string) (int, error) {
	stub.Questions = append(stub.Questions, question)
	stub.Options = append(stub.Options, append([]string{}, options...))
	if len(stub.Selections) == 0 {
		return 0, prompt.ErrPromptAborted
	}
	selection := stub.Selections[0]
	stub.Selections = stub.Selections[1:]
	return selection, nil
}

// EnvironmentSourceStub is a config.Source backed by a map.
type EnvironmentSourceStub map[config.Key]string

// Name identifies the source.
func (stub EnvironmentSourceStub) Name() string {
	return config.SourceEnvironment
}

// Lookup returns the non-empty value stored under key.
func (stub EnvironmentSourceStub) Lookup(key config.Key) (string, bool) {
	value := strings.TrimSpace(stub[key])
	return value, len(value) > 0
}

// FileStoreProvider places the home files in rootDirectory/home and the project files in the
// working directory.
func FileStoreProvider(rootDirectory string) func(workingDirectory string) (*config.FileStore, error) {
	return func(workingDirectory string) (*config.FileStore, error) {
		homeDirectory := filepath.Join(rootDirectory, homeDirectoryNameConstant)
		if directoryError := os.MkdirAll(homeDirectory, homeDirectoryPermissionsConstant); directoryError != nil {
			return nil, directoryError
		}
		return config.NewFileStore(config.Paths{
			HomeFile:          filepath.Join(homeDirectory, config.ConfigurationFileName),
			ProjectFile:       filepath.Join(workingDirectory, config.ConfigurationFileName),
			LegacyHomeFile:    filepath.Join(homeDirectory, config.LegacyConfigurationFileName),
			LegacyProjectFile: filepath.Join(workingDirectory, config.LegacyConfigurationFileName),
		}), nil
	}
}
