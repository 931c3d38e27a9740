// Package importer creates parent and sub-task issues for grouped sheet rows.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yahsan2/sheet2jira/pkg/jira"
	"github.com/yahsan2/sheet2jira/pkg/output"
	"github.com/yahsan2/sheet2jira/pkg/task"
)

// IssueCreator creates one remote issue
type IssueCreator interface {
	CreateIssue(ctx context.Context, req *jira.IssueRequest) (*jira.CreatedIssue, error)
}

// Settings holds the per-run values copied into every request
type Settings struct {
	ProjectKey    string
	ParentType    string
	ChildType     string
	EstimateField string
	// Delay is the pause between consecutive sub-task requests.
	Delay time.Duration
}

// Importer runs the sequential creation loop
type Importer struct {
	creator  IssueCreator
	settings Settings
	reporter *output.Reporter

	// Sleep pauses between sub-task requests; replaced in tests.
	Sleep func(time.Duration)
}

// New creates an importer
func New(creator IssueCreator, settings Settings, reporter *output.Reporter) *Importer {
	if reporter == nil {
		reporter = output.Discard()
	}
	return &Importer{
		creator:  creator,
		settings: settings,
		reporter: reporter,
		Sleep:    time.Sleep,
	}
}

// Run creates every group in order. Failures are recorded in the result and
// never stop the loop; a cancelled context marks the remaining groups failed.
func (im *Importer) Run(ctx context.Context, groups *task.Groups) *task.ImportResult {
	all := groups.All()
	result := &task.ImportResult{
		RunID:         uuid.NewString(),
		Total:         len(all),
		ChildrenTotal: groups.SubTaskCount(),
		Issues:        []*task.IssueRef{},
	}

	for i, grp := range all {
		if err := ctx.Err(); err != nil {
			im.abort(result, all[i:], err)
			break
		}

		im.reporter.Step(i+1, len(all), grp.Name)

		parent, err := im.createParent(ctx, grp)
		if err != nil {
			result.Failed++
			result.ChildrenFailed += len(grp.SubTasks)
			result.Errors = append(result.Errors, task.ImportError{Group: grp.Name, Error: err.Error()})
			im.reporter.Fail("Failed to create %s %q", im.settings.ParentType, grp.Name)
			im.reporter.Detail(err.Error())
			continue
		}

		result.Succeeded++
		result.Issues = append(result.Issues, parent)
		im.reporter.Success("Created %s: %s", im.settings.ParentType, parent.Key)

		im.createChildren(ctx, grp, parent.Key, result)
	}

	return result
}

func (im *Importer) createParent(ctx context.Context, grp *task.Group) (*task.IssueRef, error) {
	req := &jira.IssueRequest{
		ProjectKey:    im.settings.ProjectKey,
		Summary:       grp.Name,
		Description:   grp.Description,
		IssueType:     im.settings.ParentType,
		EstimateField: im.settings.EstimateField,
	}
	if total := grp.TotalEstimate(); total > 0 {
		req.Estimate = total
	}

	created, err := im.creator.CreateIssue(ctx, req)
	if err != nil {
		return nil, err
	}

	return &task.IssueRef{Key: created.Key, Summary: grp.Name, Estimate: req.Estimate}, nil
}

func (im *Importer) createChildren(ctx context.Context, grp *task.Group, parentKey string, result *task.ImportResult) {
	for j, st := range grp.SubTasks {
		if j > 0 && im.settings.Delay > 0 {
			im.Sleep(im.settings.Delay)
		}

		if err := ctx.Err(); err != nil {
			for _, rest := range grp.SubTasks[j:] {
				result.ChildrenFailed++
				result.Errors = append(result.Errors, task.ImportError{Group: grp.Name, SubTask: rest.Name, Error: err.Error()})
			}
			return
		}

		req := &jira.IssueRequest{
			ProjectKey:    im.settings.ProjectKey,
			Summary:       st.Name,
			Description:   st.Description,
			IssueType:     im.settings.ChildType,
			ParentKey:     parentKey,
			EstimateField: im.settings.EstimateField,
		}
		if st.Estimate > 0 {
			req.Estimate = st.Estimate
		}

		created, err := im.creator.CreateIssue(ctx, req)
		if err != nil {
			result.ChildrenFailed++
			result.Errors = append(result.Errors, task.ImportError{Group: grp.Name, SubTask: st.Name, Error: err.Error()})
			im.reporter.Fail("Failed to create %s %q", im.settings.ChildType, st.Name)
			im.reporter.Detail(err.Error())
			continue
		}

		result.Issues = append(result.Issues, &task.IssueRef{
			Key:       created.Key,
			Summary:   st.Name,
			ParentKey: parentKey,
			Estimate:  req.Estimate,
		})
		im.reporter.Success("Created %s: %s (%s)", im.settings.ChildType, created.Key, st.Name)
	}
}

// abort counts groups that were never attempted as failed
func (im *Importer) abort(result *task.ImportResult, remaining []*task.Group, err error) {
	im.reporter.Warn("Import interrupted: %v", err)
	for _, grp := range remaining {
		result.Failed++
		result.ChildrenFailed += len(grp.SubTasks)
		result.Errors = append(result.Errors, task.ImportError{Group: grp.Name, Error: err.Error()})
	}
}

// Preview lists the requests Run would send without calling the tracker
func (im *Importer) Preview(groups *task.Groups) []task.PlanRow {
	var rows []task.PlanRow
	for _, grp := range groups.All() {
		total := grp.TotalEstimate()
		rows = append(rows, task.PlanRow{
			Group:        grp.Name,
			Type:         im.settings.ParentType,
			Estimate:     total,
			SendEstimate: im.settings.EstimateField != "" && total > 0,
		})
		for _, st := range grp.SubTasks {
			rows = append(rows, task.PlanRow{
				Group:        grp.Name,
				SubTask:      st.Name,
				Type:         im.settings.ChildType,
				Estimate:     st.Estimate,
				SendEstimate: im.settings.EstimateField != "" && st.Estimate > 0,
			})
		}
	}
	return rows
}
