// Package task groups validated spreadsheet rows into parent tasks with ordered sub-tasks.
package task

import "github.com/yahsan2/sheet2jira/pkg/validate"

// Build groups records by task name. The first row seen for a task fixes its
// description and type; every row with a sub-task name appends a child.
func Build(records []validate.Record) *Groups {
	groups := NewGroups()

	for _, rec := range records {
		grp := groups.getOrAdd(rec.Task, func() *Group {
			return &Group{
				Name:        rec.Task,
				Description: rec.Description,
				Type:        rec.Type,
				Row:         rec.Row,
				SubTasks:    []SubTask{},
			}
		})

		if rec.SubTask == "" {
			continue
		}

		grp.SubTasks = append(grp.SubTasks, SubTask{
			Name:        rec.SubTask,
			Description: rec.SubTaskDesc,
			Estimate:    rec.Estimate,
			Row:         rec.Row,
		})
	}

	return groups
}
