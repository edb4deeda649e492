package gitrepo_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/storybranch/internal/gitrepo"
)

func TestParseStatus(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expectedStatus gitrepo.WorkingTreeStatus
		expectedDirty  bool
	}{
		{
			name:          "clean_tree",
			output:        "",
			expectedDirty: false,
		},
		{
			name:   "mixed_changes",
			output: " M internal/app.go\n?? notes.txt\nM  README.md\nA  internal/new.go\n",
			expectedStatus: gitrepo.WorkingTreeStatus{
				Modified:  []string{"internal/app.go"},
				Untracked: []string{"notes.txt"},
				Added:     []string{"internal/new.go"},
				Staged:    []string{"README.md"},
				Indexed:   []string{"README.md", "internal/new.go"},
			},
			expectedDirty: true,
		},
		{
			name:           "index_changes_with_any_code",
			output:         "MM main.go\nD  old.go\nR  a.go -> b.go\nAM new.go\n D gone.go\n!! build/\n",
			expectedStatus: gitrepo.WorkingTreeStatus{Indexed: []string{"main.go", "old.go", "a.go -> b.go", "new.go"}},
			expectedDirty:  true,
		},
		{
			name:          "unclassified_changes_are_dirty",
			output:        " D removed.go\n",
			expectedDirty: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			status, dirty := gitrepo.ParseStatus(testCase.output)
			require.Equal(testInstance, testCase.expectedDirty, dirty)
			if difference := cmp.Diff(testCase.expectedStatus, status); difference != "" {
				testInstance.Fatalf("unexpected status (-want +got):\n%s", difference)
			}
		})
	}
}

func TestWorkingTreeStatusHasIndexChanges(testInstance *testing.T) {
	testCases := []struct {
		name     string
		output   string
		expected bool
	}{
		{name: "modified_after_staging", output: "MM main.go\n", expected: true},
		{name: "staged_deletion", output: "D  old.go\n", expected: true},
		{name: "staged_rename", output: "R  a.go -> b.go\n", expected: true},
		{name: "added_then_modified", output: "AM new.go\n", expected: true},
		{name: "worktree_only", output: " M main.go\n D gone.go\n", expected: false},
		{name: "untracked_and_ignored", output: "?? notes.txt\n!! build/\n", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			status, _ := gitrepo.ParseStatus(testCase.output)
			require.Equal(testInstance, testCase.expected, status.HasIndexChanges())
		})
	}
}

func TestWorkingTreeStatusHas(testInstance *testing.T) {
	status := gitrepo.WorkingTreeStatus{Staged: []string{"README.md"}}
	require.True(testInstance, status.Has(gitrepo.StatusStaged))
	require.False(testInstance, status.Has(gitrepo.StatusModified))
	require.False(testInstance, status.Has(gitrepo.StatusKind("renamed")))
}
