// Package jira creates issues and lists field definitions over the Jira REST API.
package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
)

const maxErrorBody = 300

// Options configures a Client
type Options struct {
	// BaseURL is scheme://host[:port] without the /rest suffix.
	BaseURL    string
	Email      string
	APIToken   string
	APIVersion string
	StrictSSL  bool
	Timeout    time.Duration
	// Debug receives a log of every request and response when set.
	Debug      io.Writer
	DebugColor bool
}

// Client talks to one Jira instance
type Client struct {
	baseURL    string
	apiVersion string
	http       *http.Client
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a client with basic auth from email and API token
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return nil, importerr.New(importerr.KindMissingConfiguration,
			fmt.Sprintf("invalid Jira host: %q is not a usable base URL", opts.BaseURL)).
			WithSuggestion("Set JIRA_HOST to a host name such as example.atlassian.net, or a full URL such as https://jira.example.com")
	}

	version := opts.APIVersion
	if version == "" {
		version = "2"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.StrictSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(opts.Email + ":" + opts.APIToken))

	httpClient, err := api.NewHTTPClient(api.ClientOptions{
		Host:      u.Hostname(),
		AuthToken: opts.APIToken,
		Headers: map[string]string{
			"Authorization": "Basic " + credentials,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
			"User-Agent":    "sheet2jira",
		},
		Transport:      transport,
		Timeout:        opts.Timeout,
		Log:            opts.Debug,
		LogIgnoreEnv:   true,
		LogColorize:    opts.DebugColor,
		LogVerboseHTTP: opts.Debug != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		baseURL:    base,
		apiVersion: version,
		http:       httpClient,
	}, nil
}

// APIVersion returns the REST API version used in request paths
func (c *Client) APIVersion() string {
	return c.apiVersion
}

// CreateIssue creates one issue and returns its key
func (c *Client) CreateIssue(ctx context.Context, req *IssueRequest) (*CreatedIssue, error) {
	data, err := json.Marshal(map[string]interface{}{"fields": req.Fields(c.apiVersion)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.endpoint("issue"), data)
	if err != nil {
		return nil, remoteError(importerr.KindRemoteCreateFailed,
			fmt.Sprintf("failed to create %s %q", req.IssueType, req.Summary), err)
	}

	var created CreatedIssue
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, importerr.Wrap(importerr.KindRemoteCreateFailed, "failed to parse create response", err)
	}
	if created.Key == "" {
		return nil, importerr.New(importerr.KindRemoteCreateFailed,
			fmt.Sprintf("create response for %q has no issue key", req.Summary))
	}

	return &created, nil
}

// ListFields returns every field definition visible to the user
func (c *Client) ListFields(ctx context.Context) ([]Field, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.endpoint("field"), nil)
	if err != nil {
		return nil, remoteError(importerr.KindRemote, "failed to list fields", err)
	}

	var fields []Field
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, importerr.Wrap(importerr.KindRemote, "failed to parse field list", err)
	}

	return fields, nil
}

func (c *Client) endpoint(resource string) string {
	return fmt.Sprintf("%s/rest/api/%s/%s", c.baseURL, c.apiVersion, resource)
}

// doRequest executes a request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: describeBody(respBody)}
	}

	return respBody, nil
}

// describeBody flattens a Jira error payload into one line
func describeBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && (len(eb.ErrorMessages) > 0 || len(eb.Errors) > 0) {
		parts := append([]string{}, eb.ErrorMessages...)
		keys := make([]string, 0, len(eb.Errors))
		for k := range eb.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, eb.Errors[k]))
		}
		return strings.Join(parts, "; ")
	}

	return text.Truncate(maxErrorBody, strings.TrimSpace(string(body)))
}

func remoteError(kind importerr.Kind, msg string, err error) error {
	wrapped := importerr.Wrap(kind, msg, err)

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return wrapped.WithSuggestion("Check JIRA_EMAIL and JIRA_API_TOKEN, and that the account can create issues in the project")
		case http.StatusNotFound:
			return wrapped.WithSuggestion("Check JIRA_HOST, JIRA_PROJECT_KEY and JIRA_API_VERSION")
		}
	}

	return wrapped
}
