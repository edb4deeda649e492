package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/storybranch/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	branchNameRequiredMessageConstant     = "branch name must be provided"
	commitMessageRequiredMessageConstant  = "commit message must be provided"
	listBranchesFailureTemplateConstant   = "failed to list branches: %w"
	currentBranchFailureTemplateConstant  = "failed to determine current branch: %w"
	statusFailureTemplateConstant         = "failed to read working tree status: %w"
	createBranchFailureTemplateConstant   = "failed to create branch %q: %w"
	checkoutBranchFailureTemplateConstant = "failed to check out branch %q: %w"
	commitFailureTemplateConstant         = "failed to commit: %w"
	gitBranchSubcommandConstant           = "branch"
	gitBranchAllFlagConstant              = "--all"
	gitBranchFormatFlagConstant           = "--format=%(refname)"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitStatusSubcommandConstant           = "status"
	gitShortFlagConstant                  = "-s"
	gitCheckoutSubcommandConstant         = "checkout"
	gitCommitSubcommandConstant           = "commit"
	gitMessageFlagConstant                = "-m"
	localBranchReferencePrefixConstant    = "refs/heads/"
	remoteBranchReferencePrefixConstant   = "refs/remotes/"
	referencePathSeparatorConstant        = "/"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrBranchNameRequired indicates an empty branch name was supplied.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrCommitMessageRequired indicates an empty commit message was supplied.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs git operations against a single working tree.
type RepositoryManager struct {
	executor       GitExecutor
	repositoryPath string
}

// NewRepositoryManager constructs a RepositoryManager. An empty repository path means the process working directory.
func NewRepositoryManager(executor GitExecutor, repositoryPath string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, repositoryPath: strings.TrimSpace(repositoryPath)}, nil
}

// BranchNames lists local and remote-tracking branch names. Remote names are reported
// without their remote prefix and duplicates are collapsed.
func (manager *RepositoryManager) BranchNames(executionContext context.Context) ([]string, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitBranchSubcommandConstant, gitBranchAllFlagConstant, gitBranchFormatFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(listBranchesFailureTemplateConstant, executionError)
	}

	branchNames := []string{}
	seenBranchNames := map[string]struct{}{}
	for _, reference := range splitOutputLines(executionResult.StandardOutput) {
		branchName, isBranch := branchNameFromReference(strings.TrimSpace(reference))
		if !isBranch {
			continue
		}
		if _, seen := seenBranchNames[branchName]; seen {
			continue
		}
		seenBranchNames[branchName] = struct{}{}
		branchNames = append(branchNames, branchName)
	}
	return branchNames, nil
}

// CurrentBranch returns the checked out branch name.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsExistingBranch reports whether candidate collides with an existing branch name.
func (manager *RepositoryManager) IsExistingBranch(executionContext context.Context, candidate string) (bool, error) {
	branchNames, branchNamesError := manager.BranchNames(executionContext)
	if branchNamesError != nil {
		return false, branchNamesError
	}
	return IsSimilarBranchName(branchNames, candidate), nil
}

// IsExistingStory reports whether an existing branch already references storyID.
func (manager *RepositoryManager) IsExistingStory(executionContext context.Context, storyID string) (bool, error) {
	branchNames, branchNamesError := manager.BranchNames(executionContext)
	if branchNamesError != nil {
		return false, branchNamesError
	}
	return ReferencesStory(branchNames, storyID), nil
}

// CurrentBranchStoryParts extracts the story title slug and identifier from the current branch.
func (manager *RepositoryManager) CurrentBranchStoryParts(executionContext context.Context) (StoryParts, bool, error) {
	currentBranch, currentBranchError := manager.CurrentBranch(executionContext)
	if currentBranchError != nil {
		return StoryParts{}, false, currentBranchError
	}
	storyParts, found := ParseStoryParts(currentBranch)
	return storyParts, found, nil
}

// Status reads the working tree status. The boolean is false for a clean tree.
func (manager *RepositoryManager) Status(executionContext context.Context) (WorkingTreeStatus, bool, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitStatusSubcommandConstant, gitShortFlagConstant)
	if executionError != nil {
		return WorkingTreeStatus{}, false, fmt.Errorf(statusFailureTemplateConstant, executionError)
	}
	status, dirty := ParseStatus(executionResult.StandardOutput)
	return status, dirty, nil
}

// HasStatus reports whether the working tree contains at least one path of the given kind.
func (manager *RepositoryManager) HasStatus(executionContext context.Context, kind StatusKind) (bool, error) {
	status, dirty, statusError := manager.Status(executionContext)
	if statusError != nil || !dirty {
		return false, statusError
	}
	return status.Has(kind), nil
}

// CreateBranch creates a branch from HEAD and checks it out.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}
	if _, executionError := manager.executeGit(executionContext, gitBranchSubcommandConstant, trimmedBranchName); executionError != nil {
		return fmt.Errorf(createBranchFailureTemplateConstant, trimmedBranchName, executionError)
	}
	if _, executionError := manager.executeGit(executionContext, gitCheckoutSubcommandConstant, trimmedBranchName); executionError != nil {
		return fmt.Errorf(checkoutBranchFailureTemplateConstant, trimmedBranchName, executionError)
	}
	return nil
}

// Commit records the staged changes with the provided message.
func (manager *RepositoryManager) Commit(executionContext context.Context, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return ErrCommitMessageRequired
	}
	if _, executionError := manager.executeGit(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return fmt.Errorf(commitFailureTemplateConstant, executionError)
	}
	return nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments, WorkingDirectory: manager.repositoryPath})
}

func branchNameFromReference(reference string) (string, bool) {
	if strings.HasPrefix(reference, localBranchReferencePrefixConstant) {
		branchName := strings.TrimPrefix(reference, localBranchReferencePrefixConstant)
		return branchName, len(branchName) > 0
	}
	if strings.HasPrefix(reference, remoteBranchReferencePrefixConstant) {
		remoteQualifiedName := strings.TrimPrefix(reference, remoteBranchReferencePrefixConstant)
		separatorIndex := strings.Index(remoteQualifiedName, referencePathSeparatorConstant)
		if separatorIndex < 0 {
			return "", false
		}
		branchName := remoteQualifiedName[separatorIndex+1:]
		if len(branchName) == 0 || branchName == gitHeadReferenceConstant {
			return "", false
		}
		return branchName, true
	}
	return "", false
}
