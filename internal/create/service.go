package create

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/stringutils"
	"github.com/temirov/storybranch/internal/tracker"
)

const (
	storySelectionQuestionConstant         = "Which story would you like to create a branch for?"
	branchNameQuestionConstant             = "Provide a name for the branch:"
	branchNameSeparatorConstant            = "-"
	noStoriesMessageConstant               = "There are no available stories.\n"
	storyAlreadyReferencedTemplateConstant = "Could not create branch %s: an existing branch already references story %s.\n"
	similarBranchTemplateConstant          = "Could not create branch %s: an existing branch has a similar name.\n"
	emptyBranchNameMessageConstant         = "Could not create branch: the branch name is empty.\n"
	branchCreatedTemplateConstant          = "Created branch %s for story %s.\n"
	storiesListErrorTemplateConstant       = "unable to list stories: %w"
	branchLookupErrorTemplateConstant      = "unable to inspect existing branches: %w"
	branchCreationErrorTemplateConstant    = "unable to create branch %s: %w"
	repositoryMissingMessageConstant       = "repository manager not configured"
	prompterMissingMessageConstant         = "prompter not configured"
	promptAbortedLogConstant               = "branch creation aborted"
	branchRejectedLogConstant              = "branch creation rejected"
	branchCreatedLogConstant               = "branch created"
	logFieldStoryIDConstant                = "story_id"
	logFieldBranchNameConstant             = "branch_name"
	logFieldReasonConstant                 = "reason"
	rejectionReasonStoryConstant           = "story referenced"
	rejectionReasonSimilarConstant         = "similar branch"
)

var (
	// ErrRepositoryManagerNotConfigured indicates the service has no repository manager.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates the service cannot ask the user questions.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// RepositoryManager exposes the git operations used to create story branches.
type RepositoryManager interface {
	IsExistingStory(executionContext context.Context, storyID string) (bool, error)
	IsExistingBranch(executionContext context.Context, candidate string) (bool, error)
	CreateBranch(executionContext context.Context, branchName string) error
}

// Prompter asks which story to branch from and the branch name.
type Prompter interface {
	Ask(question string, defaultValue string) (string, error)
	Select(question string, options []string) (int, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	Prompter          Prompter
	Output            io.Writer
}

// Result describes the outcome of a create run.
type Result struct {
	Story      tracker.Story
	BranchName string
	Created    bool
}

// Service creates story branches.
type Service struct {
	logger            *zap.Logger
	repositoryManager RepositoryManager
	prompter          Prompter
	output            io.Writer
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
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
	return &Service{
		logger:            logger,
		repositoryManager: dependencies.RepositoryManager,
		prompter:          dependencies.Prompter,
		output:            output,
	}, nil
}

// Execute lets the user pick a workable story and creates and checks out its branch.
func (service *Service) Execute(executionContext context.Context, storyTracker tracker.Tracker) (Result, error) {
	stories, storiesError := storyTracker.Stories(executionContext)
	if storiesError != nil {
		return Result{}, fmt.Errorf(storiesListErrorTemplateConstant, storiesError)
	}
	if len(stories) == 0 {
		return Result{}, service.print(noStoriesMessageConstant)
	}

	labels := make([]string, 0, len(stories))
	for _, story := range stories {
		labels = append(labels, story.Label())
	}
	selectedIndex, selectError := service.prompter.Select(storySelectionQuestionConstant, labels)
	if selectError != nil {
		return Result{}, service.handlePromptError(selectError)
	}
	story := stories[selectedIndex]

	answer, askError := service.prompter.Ask(branchNameQuestionConstant, stringutils.NormalizedBranchName(story.Title))
	if askError != nil {
		return Result{Story: story}, service.handlePromptError(askError)
	}
	normalizedName := stringutils.NormalizedBranchName(answer)
	if len(normalizedName) == 0 {
		return Result{Story: story}, service.print(emptyBranchNameMessageConstant)
	}
	branchName := normalizedName + branchNameSeparatorConstant + story.ID
	result := Result{Story: story, BranchName: branchName}

	storyReferenced, storyLookupError := service.repositoryManager.IsExistingStory(executionContext, story.ID)
	if storyLookupError != nil {
		return result, fmt.Errorf(branchLookupErrorTemplateConstant, storyLookupError)
	}
	if storyReferenced {
		service.logRejection(story, branchName, rejectionReasonStoryConstant)
		return result, service.print(fmt.Sprintf(storyAlreadyReferencedTemplateConstant, branchName, story.ID))
	}

	similarBranchExists, branchLookupError := service.repositoryManager.IsExistingBranch(executionContext, branchName)
	if branchLookupError != nil {
		return result, fmt.Errorf(branchLookupErrorTemplateConstant, branchLookupError)
	}
	if similarBranchExists {
		service.logRejection(story, branchName, rejectionReasonSimilarConstant)
		return result, service.print(fmt.Sprintf(similarBranchTemplateConstant, branchName))
	}

	if creationError := service.repositoryManager.CreateBranch(executionContext, branchName); creationError != nil {
		return result, fmt.Errorf(branchCreationErrorTemplateConstant, branchName, creationError)
	}
	result.Created = true
	service.logger.Info(branchCreatedLogConstant, zap.String(logFieldStoryIDConstant, story.ID), zap.String(logFieldBranchNameConstant, branchName))
	return result, service.print(fmt.Sprintf(branchCreatedTemplateConstant, branchName, story.Label()))
}

func (service *Service) handlePromptError(promptError error) error {
	if errors.Is(promptError, prompt.ErrPromptAborted) {
		service.logger.Info(promptAbortedLogConstant)
		return nil
	}
	return promptError
}

func (service *Service) logRejection(story tracker.Story, branchName string, reason string) {
	service.logger.Info(
		branchRejectedLogConstant,
		zap.String(logFieldStoryIDConstant, story.ID),
		zap.String(logFieldBranchNameConstant, branchName),
		zap.String(logFieldReasonConstant, reason),
	)
}

func (service *Service) print(message string) error {
	_, writeError := io.WriteString(service.output, message)
	return writeError
}
