package start

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/gitrepo"
	"github.com/temirov/storybranch/internal/session"
	"github.com/temirov/storybranch/internal/tracker"
)

const (
	storyNotFoundTemplateConstant      = "Could not find story %s in the tracker.\n"
	storyStartedTemplateConstant       = "Started story %s.\n"
	currentBranchErrorTemplateConstant = "unable to read the current branch: %w"
	storyLookupErrorTemplateConstant   = "unable to fetch story %s: %w"
	storyStartErrorTemplateConstant    = "unable to start story %s: %w"
	repositoryMissingMessageConstant   = "repository manager not configured"
	noStoryLogConstant                 = "current branch does not reference a story"
	storyMissingLogConstant            = "story not found"
	storyStartedLogConstant            = "story started"
	logFieldStoryIDConstant            = "story_id"
	logFieldStateConstant              = "state"
)

// ErrRepositoryManagerNotConfigured indicates the service has no repository manager.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryMissingMessageConstant)

// RepositoryManager exposes the current branch story.
type RepositoryManager interface {
	CurrentBranchStoryParts(executionContext context.Context) (gitrepo.StoryParts, bool, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	Output            io.Writer
}

// Service starts the story of the current branch.
type Service struct {
	logger            *zap.Logger
	repositoryManager RepositoryManager
	output            io.Writer
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	return &Service{logger: logger, repositoryManager: dependencies.RepositoryManager, output: output}, nil
}

// Execute marks the story referenced by the current branch as started. The boolean reports
// whether a story was started.
func (service *Service) Execute(executionContext context.Context, storyTracker tracker.Tracker) (tracker.Story, bool, error) {
	storyParts, found, partsError := service.repositoryManager.CurrentBranchStoryParts(executionContext)
	if partsError != nil {
		return tracker.Story{}, false, fmt.Errorf(currentBranchErrorTemplateConstant, partsError)
	}
	if !found {
		service.logger.Info(noStoryLogConstant)
		return tracker.Story{}, false, service.print(session.NoStoryOnBranchMessage)
	}

	if _, lookupError := storyTracker.StoryByID(executionContext, storyParts.ID); lookupError != nil {
		if errors.Is(lookupError, tracker.ErrStoryNotFound) {
			service.logger.Info(storyMissingLogConstant, zap.String(logFieldStoryIDConstant, storyParts.ID))
			return tracker.Story{}, false, service.print(fmt.Sprintf(storyNotFoundTemplateConstant, storyParts.ID))
		}
		return tracker.Story{}, false, fmt.Errorf(storyLookupErrorTemplateConstant, storyParts.ID, lookupError)
	}

	startedStory, startError := storyTracker.StartStory(executionContext, storyParts.ID)
	if startError != nil {
		return tracker.Story{}, false, fmt.Errorf(storyStartErrorTemplateConstant, storyParts.ID, startError)
	}
	service.logger.Info(
		storyStartedLogConstant,
		zap.String(logFieldStoryIDConstant, startedStory.ID),
		zap.String(logFieldStateConstant, startedStory.State),
	)
	return startedStory, true, service.print(fmt.Sprintf(storyStartedTemplateConstant, startedStory.Label()))
}

func (service *Service) print(message string) error {
	_, writeError := io.WriteString(service.output, message)
	return writeError
}
