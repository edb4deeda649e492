package add

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/tracker"
)

const (
	trackerQuestionConstant              = "Which tracker are you using?"
	pivotalTrackerOptionConstant         = "Pivotal Tracker"
	jiraOptionConstant                   = "JIRA"
	projectNameQuestionConstant          = "What is this project's name?"
	apiKeyQuestionConstant               = "What is your API key?"
	pivotalProjectIDQuestionConstant     = "What is your Pivotal Tracker project id?"
	jiraProjectKeyQuestionConstant       = "What is your JIRA project key?"
	jiraDomainQuestionConstant           = "What is your JIRA subdomain (acme for acme.atlassian.net)?"
	jiraUsernameQuestionConstant         = "What is your JIRA username?"
	jiraExtraQueryQuestionConstant       = "Additional JQL filter for workable stories (optional):"
	overwriteQuestionTemplateConstant    = "A configuration named %s already exists. Overwrite it?"
	requiredAnswerTemplateConstant       = "A value for %q is required. Configuration not saved.\n"
	unchangedMessageConstant             = "Configuration unchanged.\n"
	homeDirectoryMessageConstant         = "The home directory cannot hold a project configuration. Run story_branch add from your project directory.\n"
	savedTemplateConstant                = "Configuration for %s saved to %s.\n"
	homeEntryErrorTemplateConstant       = "unable to read existing configuration: %w"
	saveErrorTemplateConstant            = "unable to save configuration: %w"
	storeMissingMessageConstant          = "configuration store not configured"
	prompterMissingMessageConstant       = "prompter not configured"
	requiredAnswerMissingMessageConstant = "required answer missing"
	addAbortedLogConstant                = "configuration aborted"
	addSavedLogConstant                  = "configuration saved"
	logFieldProjectNameConstant          = "project_name"
	logFieldTrackerConstant              = "tracker"
	logFieldHomeFileConstant             = "home_file"
)

var (
	// ErrStoreNotConfigured indicates the service has no configuration store.
	ErrStoreNotConfigured = errors.New(storeMissingMessageConstant)
	// ErrPrompterNotConfigured indicates the service cannot ask the user questions.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

	errRequiredAnswerMissing = errors.New(requiredAnswerMissingMessageConstant)
)

// ConfigurationStore persists project entries.
type ConfigurationStore interface {
	Paths() config.Paths
	ReadHomeEntry(projectName string) (config.Entry, bool, error)
	WriteHomeEntry(projectName string, entry config.Entry) error
	WriteProjectPointer(projectName string) error
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Store    ConfigurationStore
	Prompter prompt.Prompter
	Output   io.Writer
}

// Result describes the outcome of an add run.
type Result struct {
	ProjectName string
	Entry       config.Entry
	Saved       bool
}

// Service collects and stores project configuration.
type Service struct {
	logger   *zap.Logger
	store    ConfigurationStore
	prompter prompt.Prompter
	output   io.Writer
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	return &Service{logger: logger, store: dependencies.Store, prompter: dependencies.Prompter, output: output}, nil
}

// Execute asks for the tracker settings and saves them under the chosen project name.
// defaultProjectName is offered as the suggested project name.
func (service *Service) Execute(defaultProjectName string) (Result, error) {
	if service.store.Paths().ProjectFileIsHomeFile() {
		return Result{}, service.print(homeDirectoryMessageConstant)
	}

	projectName, entry, collectError := service.collect(defaultProjectName)
	if collectError != nil {
		if errors.Is(collectError, prompt.ErrPromptAborted) {
			service.logger.Info(addAbortedLogConstant)
			return Result{}, nil
		}
		if errors.Is(collectError, errRequiredAnswerMissing) {
			return Result{}, nil
		}
		return Result{}, collectError
	}
	result := Result{ProjectName: projectName, Entry: entry}

	_, exists, readError := service.store.ReadHomeEntry(projectName)
	if readError != nil {
		return result, fmt.Errorf(homeEntryErrorTemplateConstant, readError)
	}
	if exists {
		overwrite, confirmError := service.prompter.Confirm(fmt.Sprintf(overwriteQuestionTemplateConstant, projectName))
		if confirmError != nil && !errors.Is(confirmError, prompt.ErrPromptAborted) {
			return result, confirmError
		}
		if !overwrite {
			return result, service.print(unchangedMessageConstant)
		}
	}

	if writeError := service.store.WriteHomeEntry(projectName, entry); writeError != nil {
		return result, fmt.Errorf(saveErrorTemplateConstant, writeError)
	}
	if pointerError := service.store.WriteProjectPointer(projectName); pointerError != nil {
		return result, fmt.Errorf(saveErrorTemplateConstant, pointerError)
	}
	result.Saved = true

	homeFile := service.store.Paths().HomeFile
	service.logger.Info(
		addSavedLogConstant,
		zap.String(logFieldProjectNameConstant, projectName),
		zap.String(logFieldTrackerConstant, entry.Tracker),
		zap.String(logFieldHomeFileConstant, homeFile),
	)
	return result, service.print(fmt.Sprintf(savedTemplateConstant, projectName, homeFile))
}

func (service *Service) collect(defaultProjectName string) (string, config.Entry, error) {
	trackerIndex, selectError := service.prompter.Select(trackerQuestionConstant, []string{pivotalTrackerOptionConstant, jiraOptionConstant})
	if selectError != nil {
		return "", config.Entry{}, selectError
	}
	kind := tracker.KindPivotalTracker
	if trackerIndex == 1 {
		kind = tracker.KindJira
	}

	projectName, projectNameError := service.askRequired(projectNameQuestionConstant, strings.TrimSpace(defaultProjectName))
	if projectNameError != nil {
		return "", config.Entry{}, projectNameError
	}
	apiKey, apiKeyError := service.askRequired(apiKeyQuestionConstant, "")
	if apiKeyError != nil {
		return "", config.Entry{}, apiKeyError
	}
	entry := config.Entry{Tracker: string(kind), APIKey: apiKey}

	if kind == tracker.KindPivotalTracker {
		projectID, projectIDError := service.askRequired(pivotalProjectIDQuestionConstant, "")
		if projectIDError != nil {
			return "", config.Entry{}, projectIDError
		}
		entry.ProjectID = projectID
		return projectName, entry, nil
	}

	answers := []*string{&entry.ProjectID, &entry.TrackerDomain, &entry.Username}
	for questionIndex, question := range []string{jiraProjectKeyQuestionConstant, jiraDomainQuestionConstant, jiraUsernameQuestionConstant} {
		answer, answerError := service.askRequired(question, "")
		if answerError != nil {
			return "", config.Entry{}, answerError
		}
		*answers[questionIndex] = answer
	}
	extraQuery, extraQueryError := service.prompter.Ask(jiraExtraQueryQuestionConstant, "")
	if extraQueryError != nil {
		return "", config.Entry{}, extraQueryError
	}
	entry.ExtraQuery = strings.TrimSpace(extraQuery)
	return projectName, entry, nil
}

func (service *Service) askRequired(question string, defaultValue string) (string, error) {
	answer, askError := service.prompter.Ask(question, defaultValue)
	if askError != nil {
		return "", askError
	}
	trimmedAnswer := strings.TrimSpace(answer)
	if len(trimmedAnswer) == 0 {
		if printError := service.print(fmt.Sprintf(requiredAnswerTemplateConstant, question)); printError != nil {
			return "", printError
		}
		return "", errRequiredAnswerMissing
	}
	return trimmedAnswer, nil
}

func (service *Service) print(message string) error {
	_, writeError := io.WriteString(service.output, message)
	return writeError
}
