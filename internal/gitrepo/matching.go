package gitrepo

import (
	"regexp"

	"github.com/agnivade/levenshtein"
)

// SimilarityThreshold is the edit distance below which two branch names are considered the same.
const SimilarityThreshold = 3

const storyIDSuffixPrefixConstant = "-"

var (
	storySuffixPattern        = regexp.MustCompile(`^(.*)(-[1-9][0-9]+)$`)
	storyIDPattern            = regexp.MustCompile(`-[1-9][0-9]+$`)
	currentBranchStoryPattern = regexp.MustCompile(`^(.*)-(\d+)$`)
)

// StoryParts describes the title slug and story identifier encoded in a branch name.
type StoryParts struct {
	Title string
	ID    string
}

// IsSimilarBranchName reports whether candidate is within SimilarityThreshold of any existing
// branch name, either as a whole or with its trailing story identifier removed.
func IsSimilarBranchName(existingBranchNames []string, candidate string) bool {
	for _, existingBranchName := range existingBranchNames {
		if levenshtein.ComputeDistance(existingBranchName, candidate) < SimilarityThreshold {
			return true
		}
		suffixMatch := storySuffixPattern.FindStringSubmatch(existingBranchName)
		if suffixMatch == nil {
			continue
		}
		if levenshtein.ComputeDistance(suffixMatch[1], candidate) < SimilarityThreshold {
			return true
		}
	}
	return false
}

// ReferencesStory reports whether any branch name ends with "-<storyID>".
func ReferencesStory(existingBranchNames []string, storyID string) bool {
	expectedSuffix := storyIDSuffixPrefixConstant + storyID
	for _, existingBranchName := range existingBranchNames {
		if storyIDPattern.FindString(existingBranchName) == expectedSuffix {
			return true
		}
	}
	return false
}

// ParseStoryParts splits a branch name into its title slug and trailing numeric story identifier.
func ParseStoryParts(branchName string) (StoryParts, bool) {
	storyMatch := currentBranchStoryPattern.FindStringSubmatch(branchName)
	if storyMatch == nil {
		return StoryParts{}, false
	}
	return StoryParts{Title: storyMatch[1], ID: storyMatch[2]}, true
}
