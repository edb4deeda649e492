package jira_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/storybranch/internal/tracker"
	"github.com/temirov/storybranch/internal/tracker/jira"
)

const (
	testDomainConstant     = "example"
	testProjectKeyConstant = "SB"
	testUsernameConstant   = "dev@example.com"
	testAPIKeyConstant     = "DUMMYVALUE"
)

type jiraServer struct {
	projectLookups atomic.Int32
	handler        http.HandlerFunc
}

func newTestTracker(testInstance *testing.T, extraQuery string, handler http.HandlerFunc) (*jira.Tracker, *jiraServer) {
	testInstance.Helper()
	fakeServer := &jiraServer{handler: handler}
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		username, password, hasBasicAuth := request.BasicAuth()
		assert.True(testInstance, hasBasicAuth)
		assert.Equal(testInstance, testUsernameConstant, username)
		assert.Equal(testInstance, testAPIKeyConstant, password)

		if request.URL.Path == "/rest/api/2/project/SB" {
			fakeServer.projectLookups.Add(1)
			_, _ = io.WriteString(responseWriter, `{"id": "10000", "key": "SB", "name": "Story Branch"}`)
			return
		}
		fakeServer.handler(responseWriter, request)
	}))
	testInstance.Cleanup(server.Close)

	jiraTracker, creationError := jira.NewTracker(jira.Options{
		TrackerDomain: testDomainConstant,
		ProjectKey:    testProjectKeyConstant,
		Username:      testUsernameConstant,
		APIKey:        testAPIKeyConstant,
		ExtraQuery:    extraQuery,
		BaseURL:       server.URL,
		HTTPClient:    server.Client(),
	})
	require.NoError(testInstance, creationError)
	return jiraTracker, fakeServer
}

func TestTrackerValid(testInstance *testing.T) {
	completeOptions := jira.Options{TrackerDomain: testDomainConstant, ProjectKey: testProjectKeyConstant, Username: testUsernameConstant, APIKey: testAPIKeyConstant}

	testCases := []struct {
		name     string
		mutate   func(options *jira.Options)
		expected bool
	}{
		{name: "complete", mutate: func(options *jira.Options) {}, expected: true},
		{name: "missing_username", mutate: func(options *jira.Options) { options.Username = "" }, expected: false},
		{name: "missing_domain", mutate: func(options *jira.Options) { options.TrackerDomain = "" }, expected: false},
		{name: "missing_api_key", mutate: func(options *jira.Options) { options.APIKey = "" }, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			options := completeOptions
			options.BaseURL = "https://jira.invalid"
			testCase.mutate(&options)
			jiraTracker, creationError := jira.NewTracker(options)
			require.NoError(testInstance, creationError)
			require.Equal(testInstance, testCase.expected, jiraTracker.Valid())
		})
	}
}

func TestWorkableJQL(testInstance *testing.T) {
	plainTracker, _ := newTestTracker(testInstance, "", func(http.ResponseWriter, *http.Request) {})
	require.Equal(testInstance, `project = "SB" AND statusCategory != Done`, plainTracker.WorkableJQL())

	filteredTracker, _ := newTestTracker(testInstance, "assignee = currentUser()", func(http.ResponseWriter, *http.Request) {})
	require.Equal(testInstance, `project = "SB" AND statusCategory != Done AND (assignee = currentUser())`, filteredTracker.WorkableJQL())
}

func TestStoriesPaginatesAndCachesProject(testInstance *testing.T) {
	jiraTracker, fakeServer := newTestTracker(testInstance, "", func(responseWriter http.ResponseWriter, request *http.Request) {
		assert.Equal(testInstance, "/rest/api/2/search", request.URL.Path)
		assert.Equal(testInstance, `project = "SB" AND statusCategory != Done`, request.URL.Query().Get("jql"))
		assert.Equal(testInstance, "summary,status,issuetype", request.URL.Query().Get("fields"))
		switch request.URL.Query().Get("startAt") {
		case "", "0":
			_, _ = io.WriteString(responseWriter, `{"startAt": 0, "total": 2, "issues": [{"key": "SB-12", "fields": {"summary": "Fix login bug", "status": {"name": "To Do"}, "issuetype": {"name": "Bug"}}}]}`)
		default:
			_, _ = io.WriteString(responseWriter, `{"startAt": 1, "total": 2, "issues": [{"key": "SB-345", "fields": {"summary": "Add payment form", "status": {"name": "To Do"}, "issuetype": {"name": "Story"}}}]}`)
		}
	})

	stories, storiesError := jiraTracker.Stories(context.Background())
	require.NoError(testInstance, storiesError)

	expectedStories := []tracker.Story{
		{ID: "12", Title: "Fix login bug", State: "To Do", Type: "Bug", URL: "https://example.atlassian.net/browse/SB-12"},
		{ID: "345", Title: "Add payment form", State: "To Do", Type: "Story", URL: "https://example.atlassian.net/browse/SB-345"},
	}
	if difference := cmp.Diff(expectedStories, stories); difference != "" {
		testInstance.Fatalf("unexpected stories (-want +got):\n%s", difference)
	}

	_, secondError := jiraTracker.Stories(context.Background())
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, int32(1), fakeServer.projectLookups.Load())
}

func TestProjectLookupFailureIsAuthenticationError(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	jiraTracker, creationError := jira.NewTracker(jira.Options{
		TrackerDomain: testDomainConstant,
		ProjectKey:    testProjectKeyConstant,
		Username:      testUsernameConstant,
		APIKey:        "wrong",
		BaseURL:       server.URL,
		HTTPClient:    server.Client(),
	})
	require.NoError(testInstance, creationError)

	_, storiesError := jiraTracker.Stories(context.Background())
	require.Error(testInstance, storiesError)
	require.ErrorAs(testInstance, storiesError, &jira.AuthenticationError{})
	require.Contains(testInstance, storiesError.Error(), "failed to authenticate: ")
	require.Contains(testInstance, storiesError.Error(), "401 Unauthorized")
}

func TestStoryByID(testInstance *testing.T) {
	jiraTracker, _ := newTestTracker(testInstance, "", func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/rest/api/2/issue/SB-12" {
			_, _ = io.WriteString(responseWriter, `{"key": "SB-12", "fields": {"summary": "Fix login bug", "status": {"name": "To Do"}, "issuetype": {"name": "Bug"}}}`)
			return
		}
		responseWriter.WriteHeader(http.StatusNotFound)
	})

	story, storyError := jiraTracker.StoryByID(context.Background(), "12")
	require.NoError(testInstance, storyError)
	require.Equal(testInstance, "12", story.ID)
	require.Equal(testInstance, "Fix login bug", story.Title)

	_, missingError := jiraTracker.StoryByID(context.Background(), "99")
	require.ErrorIs(testInstance, missingError, tracker.ErrStoryNotFound)
}

func TestStartStoryAppliesInProgressTransition(testInstance *testing.T) {
	var appliedTransitionID string
	jiraTracker, _ := newTestTracker(testInstance, "", func(responseWriter http.ResponseWriter, request *http.Request) {
		switch {
		case request.URL.Path == "/rest/api/2/issue/SB-12/transitions" && request.Method == http.MethodGet:
			_, _ = io.WriteString(responseWriter, `{"transitions": [
				{"id": "11", "name": "Close", "to": {"name": "Done", "statusCategory": {"key": "done"}}},
				{"id": "21", "name": "Start progress", "to": {"name": "In Progress", "statusCategory": {"key": "indeterminate"}}}
			]}`)
		case request.URL.Path == "/rest/api/2/issue/SB-12/transitions" && request.Method == http.MethodPost:
			var body struct {
				Transition struct {
					ID string `json:"id"`
				} `json:"transition"`
			}
			assert.NoError(testInstance, json.NewDecoder(request.Body).Decode(&body))
			appliedTransitionID = body.Transition.ID
			responseWriter.WriteHeader(http.StatusNoContent)
		case request.URL.Path == "/rest/api/2/issue/SB-12":
			_, _ = io.WriteString(responseWriter, `{"key": "SB-12", "fields": {"summary": "Fix login bug", "status": {"name": "In Progress"}, "issuetype": {"name": "Bug"}}}`)
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
		}
	})

	story, startError := jiraTracker.StartStory(context.Background(), "12")
	require.NoError(testInstance, startError)
	require.Equal(testInstance, "21", appliedTransitionID)
	require.Equal(testInstance, "In Progress", story.State)
}

func TestStartStoryWithoutInProgressTransition(testInstance *testing.T) {
	jiraTracker, _ := newTestTracker(testInstance, "", func(responseWriter http.ResponseWriter, request *http.Request) {
		_, _ = io.WriteString(responseWriter, `{"transitions": [{"id": "11", "name": "Close", "to": {"name": "Done", "statusCategory": {"key": "done"}}}]}`)
	})

	_, startError := jiraTracker.StartStory(context.Background(), "12")
	require.ErrorIs(testInstance, startError, jira.ErrNoStartTransition)
}
