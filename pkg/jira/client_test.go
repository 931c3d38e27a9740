package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, reply string, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &c.Body)
		}
		*captured = append(*captured, c)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL, version string) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:    baseURL,
		Email:      "dev@example.com",
		APIToken:   "secret",
		APIVersion: version,
		StrictSSL:  true,
	})
	require.NoError(t, err)
	return client
}

func TestCreateIssueSendsFields(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusCreated, `{"id":"10001","key":"PRJ-2","self":"http://x/rest/api/2/issue/10001"}`, &captured)
	client := newTestClient(t, srv.URL, "2")

	created, err := client.CreateIssue(context.Background(), &IssueRequest{
		ProjectKey:    "PRJ",
		Summary:       "Add login UI",
		Description:   "Build form",
		IssueType:     "Sub-task",
		ParentKey:     "PRJ-1",
		EstimateField: "customfield_10016",
		Estimate:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, "PRJ-2", created.Key)
	assert.Equal(t, "10001", created.ID)

	require.Len(t, captured, 1)
	req := captured[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/api/2/issue", req.Path)
	assert.Equal(t, "Basic ZGV2QGV4YW1wbGUuY29tOnNlY3JldA==", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	fields := req.Body["fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"key": "PRJ"}, fields["project"])
	assert.Equal(t, "Add login UI", fields["summary"])
	assert.Equal(t, "Build form", fields["description"])
	assert.Equal(t, map[string]interface{}{"name": "Sub-task"}, fields["issuetype"])
	assert.Equal(t, map[string]interface{}{"key": "PRJ-1"}, fields["parent"])
	assert.Equal(t, 3.0, fields["customfield_10016"])
}

func TestCreateIssueOmitsZeroEstimateAndParent(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusCreated, `{"id":"1","key":"PRJ-9","self":""}`, &captured)
	client := newTestClient(t, srv.URL, "2")

	_, err := client.CreateIssue(context.Background(), &IssueRequest{
		ProjectKey:    "PRJ",
		Summary:       "Billing",
		IssueType:     "Story",
		EstimateField: "customfield_10016",
	})
	require.NoError(t, err)

	fields := captured[0].Body["fields"].(map[string]interface{})
	assert.NotContains(t, fields, "customfield_10016")
	assert.NotContains(t, fields, "parent")
	assert.NotContains(t, fields, "description")
}

func TestCreateIssueVersion3UsesADF(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusCreated, `{"id":"1","key":"PRJ-1","self":""}`, &captured)
	client := newTestClient(t, srv.URL, "3")

	_, err := client.CreateIssue(context.Background(), &IssueRequest{
		ProjectKey:  "PRJ",
		Summary:     "Auth",
		Description: "Login flow",
		IssueType:   "Story",
	})
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/3/issue", captured[0].Path)
	desc := captured[0].Body["fields"].(map[string]interface{})["description"].(map[string]interface{})
	assert.Equal(t, "doc", desc["type"])
}

func TestCreateIssueFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		reply      string
		wantMsg    string
		suggestion string
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			reply:      `{"errorMessages":["You are not authenticated"],"errors":{}}`,
			wantMsg:    "You are not authenticated",
			suggestion: "JIRA_API_TOKEN",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			reply:      `{"errorMessages":["Project does not exist"]}`,
			wantMsg:    "404",
			suggestion: "JIRA_PROJECT_KEY",
		},
		{
			name:    "field errors",
			status:  http.StatusBadRequest,
			reply:   `{"errorMessages":[],"errors":{"summary":"required","customfield_10016":"cannot be set"}}`,
			wantMsg: "customfield_10016: cannot be set; summary: required",
		},
		{
			name:    "plain body",
			status:  http.StatusInternalServerError,
			reply:   `oops`,
			wantMsg: "500: oops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured []capturedRequest
			srv := newTestServer(t, tt.status, tt.reply, &captured)
			client := newTestClient(t, srv.URL, "2")

			_, err := client.CreateIssue(context.Background(), &IssueRequest{ProjectKey: "PRJ", Summary: "Auth", IssueType: "Story"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, importerr.ErrRemoteCreateFailed))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Contains(t, err.Error(), `"Auth"`)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)

			if tt.suggestion != "" {
				assert.Contains(t, importerr.SuggestionFor(err), tt.suggestion)
			}
		})
	}
}

func TestCreateIssueMissingKey(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusCreated, `{}`, &captured)
	client := newTestClient(t, srv.URL, "2")

	_, err := client.CreateIssue(context.Background(), &IssueRequest{ProjectKey: "PRJ", Summary: "Auth", IssueType: "Story"})
	assert.True(t, errors.Is(err, importerr.ErrRemoteCreateFailed))
}

func TestCreateIssueCancelledContext(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusCreated, `{"key":"PRJ-1"}`, &captured)
	client := newTestClient(t, srv.URL, "2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateIssue(ctx, &IssueRequest{ProjectKey: "PRJ", Summary: "Auth", IssueType: "Story"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, captured)
}

func TestListFields(t *testing.T) {
	var captured []capturedRequest
	reply := `[
		{"id":"summary","name":"Summary","custom":false,"schema":{"type":"string"}},
		{"id":"customfield_10016","name":"Story Points","custom":true,"schema":{"type":"number"}},
		{"id":"timeoriginalestimate","name":"Original Estimate","custom":false,"schema":{"type":"number"}}
	]`
	srv := newTestServer(t, http.StatusOK, reply, &captured)
	client := newTestClient(t, srv.URL, "3")

	fields, err := client.ListFields(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, http.MethodGet, captured[0].Method)
	assert.Equal(t, "/rest/api/3/field", captured[0].Path)
	assert.True(t, fields[1].Custom)
	assert.Equal(t, "number", fields[1].Schema.Type)

	estimates := FindEstimateFields(fields)
	require.Len(t, estimates, 2)
	assert.Equal(t, "customfield_10016", estimates[0].ID)
	assert.Equal(t, "timeoriginalestimate", estimates[1].ID)
}

func TestListFieldsFailure(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusForbidden, `{"errorMessages":["denied"]}`, &captured)
	client := newTestClient(t, srv.URL, "2")

	_, err := client.ListFields(context.Background())
	assert.True(t, errors.Is(err, importerr.ErrRemote))
	assert.Contains(t, importerr.SuggestionFor(err), "JIRA_EMAIL")
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, base := range []string{"", "jira.example.com", "://broken"} {
		_, err := NewClient(Options{BaseURL: base})
		assert.True(t, errors.Is(err, importerr.ErrMissingConfiguration), base)
		assert.Contains(t, err.Error(), "invalid Jira host", base)
		assert.Contains(t, importerr.SuggestionFor(err), "example.atlassian.net", base)
	}
}

func TestDebugLogging(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusOK, `[]`, &captured)

	var log bytes.Buffer
	client, err := NewClient(Options{BaseURL: srv.URL, Email: "a", APIToken: "b", StrictSSL: true, Debug: &log})
	require.NoError(t, err)
	assert.Equal(t, "2", client.APIVersion())

	_, err = client.ListFields(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.Contains(log.String(), "/rest/api/2/field"))
}

func TestPlainTextToADF(t *testing.T) {
	assert.Nil(t, PlainTextToADF(""))

	var doc struct {
		Type    string `json:"type"`
		Version int    `json:"version"`
		Content []struct {
			Type    string `json:"type"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(PlainTextToADF("one\n\ntwo"), &doc))
	assert.Equal(t, "doc", doc.Type)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Content, 3)
	assert.Equal(t, "one", doc.Content[0].Content[0].Text)
	assert.Empty(t, doc.Content[1].Content)
	assert.Equal(t, "two", doc.Content[2].Content[0].Text)
}

func TestFindEstimateFieldsIsCaseInsensitive(t *testing.T) {
	fields := []Field{{ID: "a", Name: "STORY POINTS"}, {ID: "b", Name: "Sprint"}, {ID: "c", Name: "Remaining ESTIMATE"}}
	got := FindEstimateFields(fields)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
