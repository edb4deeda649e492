package gitrepo

import (
	"regexp"
	"strings"
)

// StatusKind names a category of working tree changes reported by "git status -s".
type StatusKind string

// Supported status kinds.
const (
	StatusModified  StatusKind = StatusKind("modified")
	StatusUntracked StatusKind = StatusKind("untracked")
	StatusAdded     StatusKind = StatusKind("added")
	StatusStaged    StatusKind = StatusKind("staged")
)

const (
	statusCodeLengthConstant   = 3
	unchangedIndexCodeConstant = ' '
	untrackedIndexCodeConstant = '?'
	ignoredIndexCodeConstant   = '!'
)

var statusPatterns = []struct {
	kind    StatusKind
	pattern *regexp.Regexp
}{
	{kind: StatusModified, pattern: regexp.MustCompile(`^ M (.*)`)},
	{kind: StatusUntracked, pattern: regexp.MustCompile(`^\?\? (.*)`)},
	{kind: StatusAdded, pattern: regexp.MustCompile(`^A  (.*)`)},
	{kind: StatusStaged, pattern: regexp.MustCompile(`^M  (.*)`)},
}

// WorkingTreeStatus groups changed paths by status kind. Indexed lists every path whose
// index column reports a change, whatever the code.
type WorkingTreeStatus struct {
	Modified  []string
	Untracked []string
	Added     []string
	Staged    []string
	Indexed   []string
}

// Paths returns the paths recorded for the provided kind.
func (status WorkingTreeStatus) Paths(kind StatusKind) []string {
	switch kind {
	case StatusModified:
		return status.Modified
	case StatusUntracked:
		return status.Untracked
	case StatusAdded:
		return status.Added
	case StatusStaged:
		return status.Staged
	default:
		return nil
	}
}

// HasIndexChanges reports whether anything is staged for commit, including deletions,
// renames and paths modified again after staging.
func (status WorkingTreeStatus) HasIndexChanges() bool {
	return len(status.Indexed) > 0
}

// Has reports whether at least one path carries the provided kind.
func (status WorkingTreeStatus) Has(kind StatusKind) bool {
	return len(status.Paths(kind)) > 0
}

// ParseStatus interprets short status output. It returns false for a clean working tree.
// Lines with other status codes (renames, deletions, conflicts) count towards cleanliness
// and the index changes but are not classified by kind.
func ParseStatus(shortStatusOutput string) (WorkingTreeStatus, bool) {
	statusLines := splitOutputLines(shortStatusOutput)
	if len(statusLines) == 0 {
		return WorkingTreeStatus{}, false
	}

	status := WorkingTreeStatus{}
	for _, statusLine := range statusLines {
		if isIndexChange(statusLine) {
			status.Indexed = append(status.Indexed, statusLine[statusCodeLengthConstant:])
		}
		for _, statusPattern := range statusPatterns {
			statusMatch := statusPattern.pattern.FindStringSubmatch(statusLine)
			if statusMatch == nil {
				continue
			}
			switch statusPattern.kind {
			case StatusModified:
				status.Modified = append(status.Modified, statusMatch[1])
			case StatusUntracked:
				status.Untracked = append(status.Untracked, statusMatch[1])
			case StatusAdded:
				status.Added = append(status.Added, statusMatch[1])
			case StatusStaged:
				status.Staged = append(status.Staged, statusMatch[1])
			}
		}
	}
	return status, true
}

func isIndexChange(statusLine string) bool {
	if len(statusLine) < statusCodeLengthConstant {
		return false
	}
	switch statusLine[0] {
	case unchangedIndexCodeConstant, untrackedIndexCodeConstant, ignoredIndexCodeConstant:
		return false
	default:
		return true
	}
}

func splitOutputLines(output string) []string {
	lines := []string{}
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimRight(line, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}
