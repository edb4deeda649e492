// Package tracker defines the story model and the contract every issue tracker adapter implements.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	storyNotFoundMessageConstant        = "story not found"
	storyLabelTemplateConstant          = "%s - %s"
	estimatedStoryLabelTemplateConstant = "%s - %s (%s points)"
	estimateFormatConstant              = 'g'
	estimatePrecisionConstant           = -1
	estimateBitSizeConstant             = 64
)

// Kind names a supported issue tracker.
type Kind string

// Supported tracker kinds.
const (
	KindPivotalTracker Kind = Kind("pivotal_tracker")
	KindJira           Kind = Kind("jira")
)

// ErrStoryNotFound indicates the tracker has no story with the requested identifier.
var ErrStoryNotFound = errors.New(storyNotFoundMessageConstant)

// Story is a unit of work fetched from a tracker.
type Story struct {
	ID       string
	Title    string
	Estimate *float64
	State    string
	Type     string
	URL      string
}

// Label renders the story for selection lists.
func (story Story) Label() string {
	if story.Estimate == nil {
		return fmt.Sprintf(storyLabelTemplateConstant, story.ID, story.Title)
	}
	formattedEstimate := strconv.FormatFloat(*story.Estimate, estimateFormatConstant, estimatePrecisionConstant, estimateBitSizeConstant)
	return fmt.Sprintf(estimatedStoryLabelTemplateConstant, story.ID, story.Title, formattedEstimate)
}

// Tracker is implemented by every issue tracker adapter.
type Tracker interface {
	// Valid reports whether the credentials required to reach the tracker are present.
	Valid() bool
	// Stories lists the stories a developer can pick up.
	Stories(executionContext context.Context) ([]Story, error)
	// StoryByID fetches a single story, returning ErrStoryNotFound when it does not exist.
	StoryByID(executionContext context.Context, storyID string) (Story, error)
	// StartStory moves a story into the tracker's in-progress state.
	StartStory(executionContext context.Context, storyID string) (Story, error)
}
