package finish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/gitrepo"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/session"
	"github.com/temirov/storybranch/internal/stringutils"
)

const (
	commitMessageTemplateConstant      = "[%s #%s] %s"
	commitQuestionConstant             = "Commit with standard message?"
	commitPreviewTemplateConstant      = "Commit message: %s\n"
	commitCreatedTemplateConstant      = "Committed: %s\n"
	commitDeclinedMessageConstant      = "Commit aborted.\n"
	nothingStagedMessageConstant       = "There are no staged changes to commit.\n"
	unstagedChangesMessageConstant     = "These changes are not staged and will not be committed:\n"
	unstagedPathTemplateConstant       = "  %s\n"
	currentBranchErrorTemplateConstant = "unable to read the current branch: %w"
	statusErrorTemplateConstant        = "unable to read the working tree status: %w"
	commitErrorTemplateConstant        = "unable to commit: %w"
	repositoryMissingMessageConstant   = "repository manager not configured"
	prompterMissingMessageConstant     = "prompter not configured"
	noStoryLogConstant                 = "current branch does not reference a story"
	nothingStagedLogConstant           = "nothing staged"
	commitDeclinedLogConstant          = "commit declined"
	commitCreatedLogConstant           = "story finished"
	logFieldStoryIDConstant            = "story_id"
	logFieldCommitMessageConstant      = "commit_message"
)

var (
	// ErrRepositoryManagerNotConfigured indicates the service has no repository manager.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates the service cannot confirm the commit.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// RepositoryManager exposes the git operations used to finish a story.
type RepositoryManager interface {
	CurrentBranchStoryParts(executionContext context.Context) (gitrepo.StoryParts, bool, error)
	Status(executionContext context.Context) (gitrepo.WorkingTreeStatus, bool, error)
	Commit(executionContext context.Context, message string) error
}

// Prompter confirms the commit.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	Prompter          Prompter
	Output            io.Writer
}

// Result describes the outcome of a finish run.
type Result struct {
	CommitMessage string
	Committed     bool
}

// Service commits finished stories.
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

// CommitMessage builds the finishing commit message, e.g. "[Finishes #4821] Fix login bug".
func CommitMessage(finishTag string, storyParts gitrepo.StoryParts) string {
	tag := strings.TrimSpace(finishTag)
	if len(tag) == 0 {
		tag = config.DefaultFinishTag
	}
	return fmt.Sprintf(commitMessageTemplateConstant, tag, storyParts.ID, stringutils.Undashed(storyParts.Title))
}

// Execute commits the staged changes after the user confirms the generated message.
func (service *Service) Execute(executionContext context.Context, finishTag string) (Result, error) {
	storyParts, found, partsError := service.repositoryManager.CurrentBranchStoryParts(executionContext)
	if partsError != nil {
		return Result{}, fmt.Errorf(currentBranchErrorTemplateConstant, partsError)
	}
	if !found {
		service.logger.Info(noStoryLogConstant)
		return Result{}, service.print(session.NoStoryOnBranchMessage)
	}

	status, dirty, statusError := service.repositoryManager.Status(executionContext)
	if statusError != nil {
		return Result{}, fmt.Errorf(statusErrorTemplateConstant, statusError)
	}
	if warningError := service.warnAboutUnstagedChanges(status); warningError != nil {
		return Result{}, warningError
	}
	if !dirty || !status.HasIndexChanges() {
		service.logger.Info(nothingStagedLogConstant, zap.String(logFieldStoryIDConstant, storyParts.ID))
		return Result{}, service.print(nothingStagedMessageConstant)
	}

	commitMessage := CommitMessage(finishTag, storyParts)
	result := Result{CommitMessage: commitMessage}
	if previewError := service.print(fmt.Sprintf(commitPreviewTemplateConstant, commitMessage)); previewError != nil {
		return result, previewError
	}

	confirmed, confirmError := service.prompter.Confirm(commitQuestionConstant)
	if confirmError != nil && !errors.Is(confirmError, prompt.ErrPromptAborted) {
		return result, confirmError
	}
	if !confirmed {
		service.logger.Info(commitDeclinedLogConstant, zap.String(logFieldStoryIDConstant, storyParts.ID))
		return result, service.print(commitDeclinedMessageConstant)
	}

	if commitError := service.repositoryManager.Commit(executionContext, commitMessage); commitError != nil {
		return result, fmt.Errorf(commitErrorTemplateConstant, commitError)
	}
	result.Committed = true
	service.logger.Info(
		commitCreatedLogConstant,
		zap.String(logFieldStoryIDConstant, storyParts.ID),
		zap.String(logFieldCommitMessageConstant, commitMessage),
	)
	return result, service.print(fmt.Sprintf(commitCreatedTemplateConstant, commitMessage))
}

func (service *Service) warnAboutUnstagedChanges(status gitrepo.WorkingTreeStatus) error {
	unstagedPaths := append(append([]string{}, status.Modified...), status.Untracked...)
	if len(unstagedPaths) == 0 {
		return nil
	}
	var warning strings.Builder
	warning.WriteString(unstagedChangesMessageConstant)
	for _, unstagedPath := range unstagedPaths {
		fmt.Fprintf(&warning, unstagedPathTemplateConstant, unstagedPath)
	}
	return service.print(warning.String())
}

func (service *Service) print(message string) error {
	_, writeError := io.WriteString(service.output, message)
	return writeError
}
