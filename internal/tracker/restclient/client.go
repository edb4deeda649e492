// Package restclient is the JSON-over-HTTP transport of the Pivotal Tracker adapter.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

const (
	// DefaultTimeout bounds every tracker request.
	DefaultTimeout = 120 * time.Second

	contentTypeHeaderConstant           = "Content-Type"
	acceptHeaderConstant                = "Accept"
	userAgentHeaderConstant             = "User-Agent"
	jsonContentTypeConstant             = "application/json"
	trailingSlashConstant               = "/"
	querySeparatorConstant              = "?"
	maximumSuccessStatusCodeConstant    = 299
	maximumErrorBodyBytesConstant       = 4096
	baseURLRequiredMessageConstant      = "base url must be provided"
	baseURLTrailingSlashMessageConstant = "base url must end with a trailing slash"
	responseErrorTemplateConstant       = "%s %s -> %s"
	responseErrorDetailTemplateConstant = "%s %s -> %s: %s"
	encodeQueryFailureTemplateConstant  = "failed to encode query: %w"
	encodeBodyFailureTemplateConstant   = "failed to encode request body: %w"
	decodeBodyFailureTemplateConstant   = "failed to decode response from %s: %w"
)

var (
	// ErrBaseURLRequired indicates the client was built without a base URL.
	ErrBaseURLRequired = errors.New(baseURLRequiredMessageConstant)
	// ErrNoTrailingSlash indicates a base URL path that cannot be resolved against.
	ErrNoTrailingSlash = errors.New(baseURLTrailingSlashMessageConstant)
)

// Authorizer decorates outgoing requests with credentials.
type Authorizer func(request *http.Request)

// ResponseError reports a response with a non-success status code.
type ResponseError struct {
	Method     string
	URL        string
	Status     string
	StatusCode int
	Body       string
}

// Error describes the failed request.
func (responseError *ResponseError) Error() string {
	if len(responseError.Body) == 0 {
		return fmt.Sprintf(responseErrorTemplateConstant, responseError.Method, responseError.URL, responseError.Status)
	}
	return fmt.Sprintf(responseErrorDetailTemplateConstant, responseError.Method, responseError.URL, responseError.Status, responseError.Body)
}

// IsStatus reports whether err is a ResponseError carrying the provided status code.
func IsStatus(err error, statusCode int) bool {
	var responseError *ResponseError
	return errors.As(err, &responseError) && responseError.StatusCode == statusCode
}

// Client issues JSON requests relative to a base URL.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	authorize  Authorizer
}

// NewClient builds a Client. A nil httpClient gets one with DefaultTimeout.
func NewClient(rawBaseURL string, httpClient *http.Client, userAgent string, authorize Authorizer) (*Client, error) {
	if len(strings.TrimSpace(rawBaseURL)) == 0 {
		return nil, ErrBaseURLRequired
	}
	baseURL, parseError := url.Parse(rawBaseURL)
	if parseError != nil {
		return nil, parseError
	}
	if !strings.HasSuffix(baseURL.Path, trailingSlashConstant) {
		return nil, ErrNoTrailingSlash
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, userAgent: userAgent, authorize: authorize}, nil
}

// NewRequest builds a request for urlPath relative to the base URL. Query options are encoded
// with their `url` struct tags and body is encoded as JSON when present.
func (client *Client) NewRequest(executionContext context.Context, method string, urlPath string, queryOptions any, body any) (*http.Request, error) {
	if queryOptions != nil {
		queryValues, encodeError := query.Values(queryOptions)
		if encodeError != nil {
			return nil, fmt.Errorf(encodeQueryFailureTemplateConstant, encodeError)
		}
		if encodedQuery := queryValues.Encode(); len(encodedQuery) > 0 {
			urlPath += querySeparatorConstant + encodedQuery
		}
	}

	relativeURL, parseError := url.Parse(urlPath)
	if parseError != nil {
		return nil, parseError
	}
	resolvedURL := client.baseURL.ResolveReference(relativeURL)

	var requestBody bytes.Buffer
	if body != nil {
		if encodeError := json.NewEncoder(&requestBody).Encode(body); encodeError != nil {
			return nil, fmt.Errorf(encodeBodyFailureTemplateConstant, encodeError)
		}
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, resolvedURL.String(), &requestBody)
	if requestError != nil {
		return nil, requestError
	}

	request.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	request.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)
	if len(client.userAgent) > 0 {
		request.Header.Set(userAgentHeaderConstant, client.userAgent)
	}
	if client.authorize != nil {
		client.authorize(request)
	}
	return request, nil
}

// Do sends the request and decodes a successful JSON response into target when target is not nil.
func (client *Client) Do(request *http.Request, target any) error {
	_, doError := client.DoWithHeader(request, target)
	return doError
}

// DoWithHeader behaves like Do and also returns the response headers of a successful request.
func (client *Client) DoWithHeader(request *http.Request, target any) (http.Header, error) {
	response, sendError := client.httpClient.Do(request)
	if sendError != nil {
		return nil, sendError
	}
	defer response.Body.Close()

	if response.StatusCode > maximumSuccessStatusCodeConstant {
		errorBody, _ := io.ReadAll(io.LimitReader(response.Body, maximumErrorBodyBytesConstant))
		return nil, &ResponseError{
			Method:     request.Method,
			URL:        request.URL.String(),
			Status:     response.Status,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(errorBody)),
		}
	}

	if target == nil {
		return response.Header, nil
	}
	if decodeError := json.NewDecoder(response.Body).Decode(target); decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return nil, fmt.Errorf(decodeBodyFailureTemplateConstant, request.URL.String(), decodeError)
	}
	return response.Header, nil
}
