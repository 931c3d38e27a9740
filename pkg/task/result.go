package task

// ImportResult represents the outcome of one import run
type ImportResult struct {
	RunID          string        `json:"run_id"`
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	ChildrenTotal  int           `json:"children_total"`
	ChildrenFailed int           `json:"children_failed"`
	Issues         []*IssueRef   `json:"issues"`
	Errors         []ImportError `json:"errors,omitempty"`
}

// IssueRef records one issue the tracker accepted
type IssueRef struct {
	Key       string  `json:"key"`
	Summary   string  `json:"summary"`
	ParentKey string  `json:"parent_key,omitempty"`
	Estimate  float64 `json:"estimate,omitempty"`
}

// ImportError represents a failure creating one parent or child issue
type ImportError struct {
	Group   string `json:"group"`
	SubTask string `json:"sub_task,omitempty"`
	Error   string `json:"error"`
}

// ChildrenCreated returns how many child issues were created
func (r *ImportResult) ChildrenCreated() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.ParentKey != "" {
			n++
		}
	}
	return n
}

// PlanRow is one line of a dry-run preview
type PlanRow struct {
	Group    string  `json:"group"`
	SubTask  string  `json:"sub_task,omitempty"`
	Type     string  `json:"type"`
	Estimate float64 `json:"estimate"`
	// SendEstimate is false when the estimate field would be left out of the request.
	SendEstimate bool `json:"send_estimate"`
}
