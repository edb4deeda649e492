package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/storybranch/internal/execshell"
	"github.com/temirov/storybranch/internal/gitrepo"
)

const testRepositoryPathConstant = "/tmp/repository"

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses []stubGitResponse
}

type stubGitResponse struct {
	result execshell.ExecutionResult
	err    error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}

	next := executor.responses[0]
	executor.responses = executor.responses[1:]
	if next.err != nil {
		return execshell.ExecutionResult{}, next.err
	}
	return next.result, nil
}

func newTestRepositoryManager(testInstance *testing.T, executor *stubGitExecutor) *gitrepo.RepositoryManager {
	testInstance.Helper()
	manager, creationError := gitrepo.NewRepositoryManager(executor, testRepositoryPathConstant)
	require.NoError(testInstance, creationError)
	return manager
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	_, creationError := gitrepo.NewRepositoryManager(nil, testRepositoryPathConstant)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
}

func TestBranchNamesIncludesRemoteBranches(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{{result: execshell.ExecutionResult{StandardOutput: "refs/heads/main\nrefs/heads/feature/login-12\nrefs/remotes/origin/HEAD\nrefs/remotes/origin/main\nrefs/remotes/origin/add-payment-form-213976\n"}}}}
	manager := newTestRepositoryManager(testInstance, executor)

	branchNames, branchNamesError := manager.BranchNames(context.Background())
	require.NoError(testInstance, branchNamesError)
	require.Equal(testInstance, []string{"main", "feature/login-12", "add-payment-form-213976"}, branchNames)

	require.Len(testInstance, executor.recorded, 1)
	require.Equal(testInstance, []string{"branch", "--all", "--format=%(refname)"}, executor.recorded[0].Arguments)
	require.Equal(testInstance, testRepositoryPathConstant, executor.recorded[0].WorkingDirectory)
}

func TestCollisionChecksUseBranchListing(testInstance *testing.T) {
	listing := execshell.ExecutionResult{StandardOutput: "refs/heads/main\nrefs/heads/fix-login-bug-4821\n"}

	existingStoryExecutor := &stubGitExecutor{responses: []stubGitResponse{{result: listing}}}
	isExistingStory, storyError := newTestRepositoryManager(testInstance, existingStoryExecutor).IsExistingStory(context.Background(), "4821")
	require.NoError(testInstance, storyError)
	require.True(testInstance, isExistingStory)

	existingBranchExecutor := &stubGitExecutor{responses: []stubGitResponse{{result: listing}}}
	isExistingBranch, branchError := newTestRepositoryManager(testInstance, existingBranchExecutor).IsExistingBranch(context.Background(), "fix-login-bugs-77")
	require.NoError(testInstance, branchError)
	require.False(testInstance, isExistingBranch)

	failingExecutor := &stubGitExecutor{responses: []stubGitResponse{{err: errors.New("not a git repository")}}}
	_, failingError := newTestRepositoryManager(testInstance, failingExecutor).IsExistingBranch(context.Background(), "anything")
	require.Error(testInstance, failingError)
}

func TestCurrentBranchStoryParts(testInstance *testing.T) {
	testCases := []struct {
		name          string
		output        string
		expectedParts gitrepo.StoryParts
		expectedFound bool
	}{
		{name: "story_branch", output: "fix-login-bug-4821\n", expectedParts: gitrepo.StoryParts{Title: "fix-login-bug", ID: "4821"}, expectedFound: true},
		{name: "plain_branch", output: "main\n", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{{result: execshell.ExecutionResult{StandardOutput: testCase.output}}}}
			storyParts, found, partsError := newTestRepositoryManager(testInstance, executor).CurrentBranchStoryParts(context.Background())
			require.NoError(testInstance, partsError)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedParts, storyParts)
			require.Equal(testInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recorded[0].Arguments)
		})
	}
}

func TestHasStatus(testInstance *testing.T) {
	testCases := []struct {
		name     string
		output   string
		kind     gitrepo.StatusKind
		expected bool
	}{
		{name: "staged_present", output: "M  README.md\n", kind: gitrepo.StatusStaged, expected: true},
		{name: "staged_absent", output: " M README.md\n", kind: gitrepo.StatusStaged, expected: false},
		{name: "clean_tree", output: "", kind: gitrepo.StatusUntracked, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{{result: execshell.ExecutionResult{StandardOutput: testCase.output}}}}
			hasStatus, statusError := newTestRepositoryManager(testInstance, executor).HasStatus(context.Background(), testCase.kind)
			require.NoError(testInstance, statusError)
			require.Equal(testInstance, testCase.expected, hasStatus)
			require.Equal(testInstance, []string{"status", "-s"}, executor.recorded[0].Arguments)
		})
	}
}

func TestCreateBranchCreatesAndChecksOut(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager := newTestRepositoryManager(testInstance, executor)

	require.NoError(testInstance, manager.CreateBranch(context.Background(), "fix-login-bug-4821"))
	require.Len(testInstance, executor.recorded, 2)
	require.Equal(testInstance, []string{"branch", "fix-login-bug-4821"}, executor.recorded[0].Arguments)
	require.Equal(testInstance, []string{"checkout", "fix-login-bug-4821"}, executor.recorded[1].Arguments)

	require.ErrorIs(testInstance, manager.CreateBranch(context.Background(), "  "), gitrepo.ErrBranchNameRequired)
}

func TestCreateBranchStopsWhenCreationFails(testInstance *testing.T) {
	creationFailure := errors.New("branch exists")
	executor := &stubGitExecutor{responses: []stubGitResponse{{err: creationFailure}}}

	creationError := newTestRepositoryManager(testInstance, executor).CreateBranch(context.Background(), "feature-12")
	require.ErrorIs(testInstance, creationError, creationFailure)
	require.Len(testInstance, executor.recorded, 1)
}

func TestCommitPassesMessage(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager := newTestRepositoryManager(testInstance, executor)

	require.NoError(testInstance, manager.Commit(context.Background(), "[Finishes #4821] Fix login bug"))
	require.Equal(testInstance, []string{"commit", "-m", "[Finishes #4821] Fix login bug"}, executor.recorded[0].Arguments)
	require.ErrorIs(testInstance, manager.Commit(context.Background(), ""), gitrepo.ErrCommitMessageRequired)
}
