package jira

import (
	"encoding/json"
	"strings"
)

// IssueRequest describes one issue to create
type IssueRequest struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	// ParentKey links a sub-task to an existing issue.
	ParentKey string
	// EstimateField is the custom field id that receives Estimate.
	EstimateField string
	Estimate      float64
}

// HasEstimate reports whether the estimate field will be sent
func (r *IssueRequest) HasEstimate() bool {
	return r.EstimateField != "" && r.Estimate > 0
}

// Fields builds the "fields" object of a create request. API version 3
// expects descriptions as ADF documents; earlier versions take plain text.
func (r *IssueRequest) Fields(apiVersion string) map[string]interface{} {
	fields := map[string]interface{}{
		"project":   map[string]string{"key": r.ProjectKey},
		"summary":   r.Summary,
		"issuetype": map[string]string{"name": r.IssueType},
	}

	if r.Description != "" {
		if apiVersion == "3" {
			fields["description"] = PlainTextToADF(r.Description)
		} else {
			fields["description"] = r.Description
		}
	}

	if r.ParentKey != "" {
		fields["parent"] = map[string]string{"key": r.ParentKey}
	}

	if r.HasEstimate() {
		fields[r.EstimateField] = r.Estimate
	}

	return fields
}

// CreatedIssue is the tracker's reply to a create request
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Field describes one issue field definition
type Field struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Custom bool        `json:"custom"`
	Schema FieldSchema `json:"schema"`
}

// FieldSchema holds the value type of a field
type FieldSchema struct {
	Type   string `json:"type"`
	Custom string `json:"custom,omitempty"`
}

// FindEstimateFields keeps fields whose name mentions points or estimates
func FindEstimateFields(fields []Field) []Field {
	var out []Field
	for _, f := range fields {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "point") || strings.Contains(name, "estimate") {
			out = append(out, f)
		}
	}
	return out
}

// PlainTextToADF converts plain text to an Atlassian Document Format
// document, one paragraph per line.
func PlainTextToADF(text string) json.RawMessage {
	if text == "" {
		return nil
	}

	var content []interface{}
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			content = append(content, map[string]interface{}{
				"type":    "paragraph",
				"content": []interface{}{},
			})
			continue
		}
		content = append(content, map[string]interface{}{
			"type": "paragraph",
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": para},
			},
		})
	}

	data, _ := json.Marshal(map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": content,
	})
	return data
}

// errorBody is the error payload Jira returns on rejected requests
type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
