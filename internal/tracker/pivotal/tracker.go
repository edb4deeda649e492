// Package pivotal adapts the Pivotal Tracker REST API v5 to the tracker contract.
package pivotal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/temirov/storybranch/internal/tracker"
	"github.com/temirov/storybranch/internal/tracker/restclient"
)

const (
	// DefaultBaseURL is the public Pivotal Tracker API endpoint.
	DefaultBaseURL = "https://www.pivotaltracker.com/services/v5/"

	trackerTokenHeaderConstant         = "X-TrackerToken"
	userAgentConstant                  = "story_branch"
	projectStoriesPathTemplateConstant = "projects/%s/stories"
	projectStoryPathTemplateConstant   = "projects/%s/stories/%s"
	unstartedStateConstant             = "unstarted"
	startedStateConstant               = "started"
	featureStoryTypeConstant           = "feature"
	storiesPageLimitConstant           = 500
	paginationTotalHeaderConstant      = "X-Tracker-Pagination-Total"
	listStoriesFailureTemplateConstant = "failed to list pivotal tracker stories: %w"
	getStoryFailureTemplateConstant    = "failed to fetch pivotal tracker story %s: %w"
	startStoryFailureTemplateConstant  = "failed to start pivotal tracker story %s: %w"
)

// Options configure a Pivotal Tracker adapter.
type Options struct {
	APIKey     string
	ProjectID  string
	BaseURL    string
	HTTPClient *http.Client
}

// Tracker talks to a single Pivotal Tracker project.
type Tracker struct {
	apiKey    string
	projectID string
	client    *restclient.Client
}

type storyResource struct {
	ID           int64    `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Estimate     *float64 `json:"estimate,omitempty"`
	CurrentState string   `json:"current_state,omitempty"`
	StoryType    string   `json:"story_type,omitempty"`
	URL          string   `json:"url,omitempty"`
}

type storyListOptions struct {
	WithState string `url:"with_state,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Offset    int    `url:"offset,omitempty"`
}

type storyUpdateRequest struct {
	CurrentState string `json:"current_state"`
}

// NewTracker builds a Tracker. Missing credentials are reported by Valid rather than here.
func NewTracker(options Options) (*Tracker, error) {
	baseURL := strings.TrimSpace(options.BaseURL)
	if len(baseURL) == 0 {
		baseURL = DefaultBaseURL
	}

	apiKey := strings.TrimSpace(options.APIKey)
	client, clientError := restclient.NewClient(baseURL, options.HTTPClient, userAgentConstant, func(request *http.Request) {
		request.Header.Set(trackerTokenHeaderConstant, apiKey)
	})
	if clientError != nil {
		return nil, clientError
	}

	return &Tracker{apiKey: apiKey, projectID: strings.TrimSpace(options.ProjectID), client: client}, nil
}

// Valid reports whether both the API token and the project id are configured.
func (pivotalTracker *Tracker) Valid() bool {
	return len(pivotalTracker.apiKey) > 0 && len(pivotalTracker.projectID) > 0
}

// Stories lists unstarted stories, keeping features only when they are estimated.
func (pivotalTracker *Tracker) Stories(executionContext context.Context) ([]tracker.Story, error) {
	storiesPath := fmt.Sprintf(projectStoriesPathTemplateConstant, url.PathEscape(pivotalTracker.projectID))
	listOptions := storyListOptions{WithState: unstartedStateConstant, Limit: storiesPageLimitConstant}

	var resources []storyResource
	for {
		request, requestError := pivotalTracker.client.NewRequest(executionContext, http.MethodGet, storiesPath, listOptions, nil)
		if requestError != nil {
			return nil, fmt.Errorf(listStoriesFailureTemplateConstant, requestError)
		}

		var page []storyResource
		header, doError := pivotalTracker.client.DoWithHeader(request, &page)
		if doError != nil {
			return nil, fmt.Errorf(listStoriesFailureTemplateConstant, doError)
		}
		resources = append(resources, page...)

		total, totalError := strconv.Atoi(header.Get(paginationTotalHeaderConstant))
		listOptions.Offset += len(page)
		if totalError != nil || len(page) == 0 || listOptions.Offset >= total {
			break
		}
	}

	stories := make([]tracker.Story, 0, len(resources))
	for _, resource := range resources {
		if !isWorkable(resource) {
			continue
		}
		stories = append(stories, resource.toStory())
	}
	return stories, nil
}

// StoryByID fetches a story of the configured project.
func (pivotalTracker *Tracker) StoryByID(executionContext context.Context, storyID string) (tracker.Story, error) {
	request, requestError := pivotalTracker.client.NewRequest(executionContext, http.MethodGet, pivotalTracker.storyPath(storyID), nil, nil)
	if requestError != nil {
		return tracker.Story{}, fmt.Errorf(getStoryFailureTemplateConstant, storyID, requestError)
	}

	var resource storyResource
	if doError := pivotalTracker.client.Do(request, &resource); doError != nil {
		if restclient.IsStatus(doError, http.StatusNotFound) {
			return tracker.Story{}, fmt.Errorf(getStoryFailureTemplateConstant, storyID, tracker.ErrStoryNotFound)
		}
		return tracker.Story{}, fmt.Errorf(getStoryFailureTemplateConstant, storyID, doError)
	}
	return resource.toStory(), nil
}

// StartStory sets the story's current state to started.
func (pivotalTracker *Tracker) StartStory(executionContext context.Context, storyID string) (tracker.Story, error) {
	request, requestError := pivotalTracker.client.NewRequest(executionContext, http.MethodPut, pivotalTracker.storyPath(storyID), nil, storyUpdateRequest{CurrentState: startedStateConstant})
	if requestError != nil {
		return tracker.Story{}, fmt.Errorf(startStoryFailureTemplateConstant, storyID, requestError)
	}

	var resource storyResource
	if doError := pivotalTracker.client.Do(request, &resource); doError != nil {
		if restclient.IsStatus(doError, http.StatusNotFound) {
			return tracker.Story{}, fmt.Errorf(startStoryFailureTemplateConstant, storyID, tracker.ErrStoryNotFound)
		}
		return tracker.Story{}, fmt.Errorf(startStoryFailureTemplateConstant, storyID, doError)
	}
	return resource.toStory(), nil
}

func (pivotalTracker *Tracker) storyPath(storyID string) string {
	return fmt.Sprintf(projectStoryPathTemplateConstant, url.PathEscape(pivotalTracker.projectID), url.PathEscape(strings.TrimSpace(storyID)))
}

func isWorkable(resource storyResource) bool {
	if resource.CurrentState != unstartedStateConstant {
		return false
	}
	return resource.StoryType != featureStoryTypeConstant || resource.Estimate != nil
}

func (resource storyResource) toStory() tracker.Story {
	return tracker.Story{
		ID:       strconv.FormatInt(resource.ID, 10),
		Title:    resource.Name,
		Estimate: resource.Estimate,
		State:    resource.CurrentState,
		Type:     resource.StoryType,
		URL:      resource.URL,
	}
}
