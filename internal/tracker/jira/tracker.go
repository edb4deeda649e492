// Package jira adapts the JIRA Cloud REST API v2 to the tracker contract.
package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/temirov/storybranch/internal/tracker"
)

const (
	baseURLTemplateConstant               = "https://%s.atlassian.net"
	browseURLTemplateConstant             = "https://%s.atlassian.net/browse/%s"
	issueKeyTemplateConstant              = "%s-%s"
	issueKeyPatternTemplateConstant       = `^%s-(\d+)$`
	workableJQLTemplateConstant           = `project = "%s" AND statusCategory != Done`
	extraQueryTemplateConstant            = "%s AND (%s)"
	responseStatusTemplateConstant        = "%s: %w"
	searchPageSizeConstant                = 100
	requestTimeoutConstant                = 120 * time.Second
	inProgressStatusCategoryKeyConstant   = "indeterminate"
	projectKeyRequiredMessageConstant     = "project key must be set"
	noStartTransitionMessageConstant      = "no transition leads to an in progress status"
	authenticationFailureTemplateConstant = "failed to authenticate: %v"
	clientFailureTemplateConstant         = "failed to create jira client: %w"
	listIssuesFailureTemplateConstant     = "failed to list jira issues: %w"
	getIssueFailureTemplateConstant       = "failed to fetch jira issue %s: %w"
	startIssueFailureTemplateConstant     = "failed to start jira issue %s: %w"
)

var (
	// ErrProjectKeyRequired indicates the adapter has no project key to resolve.
	ErrProjectKeyRequired = errors.New(projectKeyRequiredMessageConstant)
	// ErrNoStartTransition indicates the issue workflow offers no transition into an in progress status.
	ErrNoStartTransition = errors.New(noStartTransitionMessageConstant)
)

var searchFields = []string{"summary", "status", "issuetype"}

// AuthenticationError reports a failure to resolve the configured project.
type AuthenticationError struct {
	Cause error
}

// Error describes the authentication failure.
func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationFailureTemplateConstant, authenticationError.Cause)
}

// Unwrap exposes the underlying cause.
func (authenticationError AuthenticationError) Unwrap() error {
	return authenticationError.Cause
}

// Options configure a JIRA adapter. BaseURL replaces https://<TrackerDomain>.atlassian.net and
// HTTPClient supplies the transport and timeout that basic authentication is layered on.
type Options struct {
	TrackerDomain string
	ProjectKey    string
	Username      string
	APIKey        string
	ExtraQuery    string
	BaseURL       string
	HTTPClient    *http.Client
}

// Tracker talks to a single JIRA project.
type Tracker struct {
	trackerDomain string
	projectKey    string
	username      string
	apiKey        string
	extraQuery    string
	issuePattern  *regexp.Regexp
	client        *gojira.Client

	projectMutex sync.Mutex
	project      *gojira.Project
}

// NewTracker builds a Tracker. Missing credentials are reported by Valid rather than here.
func NewTracker(options Options) (*Tracker, error) {
	trackerDomain := strings.TrimSpace(options.TrackerDomain)
	projectKey := strings.TrimSpace(options.ProjectKey)
	username := strings.TrimSpace(options.Username)
	apiKey := strings.TrimSpace(options.APIKey)

	baseURL := strings.TrimSpace(options.BaseURL)
	if len(baseURL) == 0 {
		baseURL = fmt.Sprintf(baseURLTemplateConstant, trackerDomain)
	}

	authenticatedTransport := &gojira.BasicAuthTransport{Username: username, Password: apiKey}
	requestTimeout := requestTimeoutConstant
	if options.HTTPClient != nil {
		authenticatedTransport.Transport = options.HTTPClient.Transport
		requestTimeout = options.HTTPClient.Timeout
	}
	httpClient := authenticatedTransport.Client()
	httpClient.Timeout = requestTimeout

	client, clientError := gojira.NewClient(httpClient, baseURL)
	if clientError != nil {
		return nil, fmt.Errorf(clientFailureTemplateConstant, clientError)
	}

	return &Tracker{
		trackerDomain: trackerDomain,
		projectKey:    projectKey,
		username:      username,
		apiKey:        apiKey,
		extraQuery:    strings.TrimSpace(options.ExtraQuery),
		issuePattern:  regexp.MustCompile(fmt.Sprintf(issueKeyPatternTemplateConstant, regexp.QuoteMeta(projectKey))),
		client:        client,
	}, nil
}

// Valid reports whether the API token, project key, username and tracker domain are configured.
func (jiraTracker *Tracker) Valid() bool {
	for _, requiredValue := range []string{jiraTracker.apiKey, jiraTracker.projectKey, jiraTracker.username, jiraTracker.trackerDomain} {
		if len(requiredValue) == 0 {
			return false
		}
	}
	return true
}

// Stories lists issues of the project that are not done, narrowed by the extra query when configured.
func (jiraTracker *Tracker) Stories(executionContext context.Context) ([]tracker.Story, error) {
	if _, projectError := jiraTracker.resolveProject(executionContext); projectError != nil {
		return nil, projectError
	}

	stories := []tracker.Story{}
	searchOptions := &gojira.SearchOptions{MaxResults: searchPageSizeConstant, Fields: searchFields}
	for {
		issues, response, searchError := jiraTracker.client.Issue.SearchWithContext(executionContext, jiraTracker.WorkableJQL(), searchOptions)
		if searchError != nil {
			return nil, fmt.Errorf(listIssuesFailureTemplateConstant, describeResponseError(response, searchError))
		}

		for _, issue := range issues {
			story, isProjectIssue := jiraTracker.toStory(issue)
			if !isProjectIssue {
				continue
			}
			stories = append(stories, story)
		}

		searchOptions.StartAt += len(issues)
		if len(issues) == 0 || response == nil || searchOptions.StartAt >= response.Total {
			return stories, nil
		}
	}
}

// WorkableJQL returns the JQL used to list workable issues.
func (jiraTracker *Tracker) WorkableJQL() string {
	jql := fmt.Sprintf(workableJQLTemplateConstant, jiraTracker.projectKey)
	if len(jiraTracker.extraQuery) == 0 {
		return jql
	}
	return fmt.Sprintf(extraQueryTemplateConstant, jql, jiraTracker.extraQuery)
}

// StoryByID fetches the issue "<project key>-<storyID>".
func (jiraTracker *Tracker) StoryByID(executionContext context.Context, storyID string) (tracker.Story, error) {
	if _, projectError := jiraTracker.resolveProject(executionContext); projectError != nil {
		return tracker.Story{}, projectError
	}

	issueKey := jiraTracker.issueKey(storyID)
	issue, issueError := jiraTracker.fetchIssue(executionContext, issueKey)
	if issueError != nil {
		return tracker.Story{}, fmt.Errorf(getIssueFailureTemplateConstant, issueKey, issueError)
	}
	story, _ := jiraTracker.toStory(issue)
	return story, nil
}

// StartStory applies the first transition leading to an in progress status.
func (jiraTracker *Tracker) StartStory(executionContext context.Context, storyID string) (tracker.Story, error) {
	if _, projectError := jiraTracker.resolveProject(executionContext); projectError != nil {
		return tracker.Story{}, projectError
	}

	issueKey := jiraTracker.issueKey(storyID)
	transitions, transitionsResponse, transitionsError := jiraTracker.client.Issue.GetTransitionsWithContext(executionContext, issueKey)
	if transitionsError != nil {
		return tracker.Story{}, fmt.Errorf(startIssueFailureTemplateConstant, issueKey, translateNotFound(transitionsResponse, transitionsError))
	}

	startTransition, found := findStartTransition(transitions)
	if !found {
		return tracker.Story{}, fmt.Errorf(startIssueFailureTemplateConstant, issueKey, ErrNoStartTransition)
	}

	if transitionResponse, transitionError := jiraTracker.client.Issue.DoTransitionWithContext(executionContext, issueKey, startTransition.ID); transitionError != nil {
		return tracker.Story{}, fmt.Errorf(startIssueFailureTemplateConstant, issueKey, describeResponseError(transitionResponse, transitionError))
	}

	issue, issueError := jiraTracker.fetchIssue(executionContext, issueKey)
	if issueError != nil {
		return tracker.Story{}, fmt.Errorf(startIssueFailureTemplateConstant, issueKey, issueError)
	}
	story, _ := jiraTracker.toStory(issue)
	return story, nil
}

// resolveProject looks up the project once and caches it for later calls.
func (jiraTracker *Tracker) resolveProject(executionContext context.Context) (*gojira.Project, error) {
	jiraTracker.projectMutex.Lock()
	defer jiraTracker.projectMutex.Unlock()

	if jiraTracker.project != nil {
		return jiraTracker.project, nil
	}
	if len(jiraTracker.projectKey) == 0 {
		return nil, ErrProjectKeyRequired
	}

	project, response, projectError := jiraTracker.client.Project.GetWithContext(executionContext, jiraTracker.projectKey)
	if projectError != nil {
		return nil, AuthenticationError{Cause: describeResponseError(response, projectError)}
	}

	jiraTracker.project = project
	return jiraTracker.project, nil
}

func (jiraTracker *Tracker) fetchIssue(executionContext context.Context, issueKey string) (gojira.Issue, error) {
	issue, response, issueError := jiraTracker.client.Issue.GetWithContext(executionContext, issueKey, nil)
	if issueError != nil {
		return gojira.Issue{}, translateNotFound(response, issueError)
	}
	return *issue, nil
}

func (jiraTracker *Tracker) issueKey(storyID string) string {
	return fmt.Sprintf(issueKeyTemplateConstant, jiraTracker.projectKey, strings.TrimSpace(storyID))
}

func (jiraTracker *Tracker) toStory(issue gojira.Issue) (tracker.Story, bool) {
	storyID := issue.Key
	isProjectIssue := false
	if keyMatch := jiraTracker.issuePattern.FindStringSubmatch(issue.Key); keyMatch != nil {
		storyID = keyMatch[1]
		isProjectIssue = true
	}
	story := tracker.Story{
		ID:  storyID,
		URL: fmt.Sprintf(browseURLTemplateConstant, jiraTracker.trackerDomain, issue.Key),
	}
	if issue.Fields != nil {
		story.Title = issue.Fields.Summary
		story.Type = issue.Fields.Type.Name
		if issue.Fields.Status != nil {
			story.State = issue.Fields.Status.Name
		}
	}
	return story, isProjectIssue
}

func findStartTransition(transitions []gojira.Transition) (gojira.Transition, bool) {
	for _, transition := range transitions {
		if transition.To.StatusCategory.Key == inProgressStatusCategoryKeyConstant {
			return transition, true
		}
	}
	return gojira.Transition{}, false
}

// describeResponseError prefixes the HTTP status so failures stay readable when JIRA returns no error body.
func describeResponseError(response *gojira.Response, requestError error) error {
	if response == nil || response.Response == nil {
		return requestError
	}
	return fmt.Errorf(responseStatusTemplateConstant, response.Status, requestError)
}

func translateNotFound(response *gojira.Response, requestError error) error {
	if response != nil && response.Response != nil && response.StatusCode == http.StatusNotFound {
		return tracker.ErrStoryNotFound
	}
	return describeResponseError(response, requestError)
}
