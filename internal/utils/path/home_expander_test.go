package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/storybranch/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "tilde_only", candidatePath: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidatePath: "~/.story_branch.yml", expectedPath: filepath.Join(testHomeDirectoryConstant, ".story_branch.yml")},
		{name: "absolute_path", candidatePath: "/etc/story_branch", expectedPath: "/etc/story_branch"},
		{name: "relative_path", candidatePath: ".story_branch.yml", expectedPath: ".story_branch.yml"},
		{name: "other_user", candidatePath: "~other/file", expectedPath: "~other/file"},
		{name: "empty_path", candidatePath: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderJoinHome(testInstance *testing.T) {
	providerCalls := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		providerCalls++
		return testHomeDirectoryConstant, nil
	})

	joinedPath, joinError := expander.JoinHome(".story_branch")
	require.NoError(testInstance, joinError)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, ".story_branch"), joinedPath)

	_, secondJoinError := expander.JoinHome(".story_branch.yml")
	require.NoError(testInstance, secondJoinError)
	require.Equal(testInstance, 1, providerCalls)
}

func TestHomeExpanderProviderFailures(testInstance *testing.T) {
	providerError := errors.New("no passwd entry")
	failingExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", providerError
	})
	_, joinError := failingExpander.JoinHome(".story_branch")
	require.ErrorIs(testInstance, joinError, providerError)
	require.Equal(testInstance, "~/.story_branch", failingExpander.Expand("~/.story_branch"))

	emptyExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "  ", nil
	})
	_, emptyError := emptyExpander.HomeDirectory()
	require.ErrorIs(testInstance, emptyError, pathutils.ErrHomeDirectoryUnavailable)
}
