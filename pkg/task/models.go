package task

// SubTask is one child row attached to a parent group
type SubTask struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Estimate    float64 `json:"estimate"`
	Row         int     `json:"row"`
}

// Group is a parent task and its ordered children
type Group struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
	Row         int       `json:"row"`
	SubTasks    []SubTask `json:"sub_tasks"`
}

// TotalEstimate sums the children's estimates
func (g *Group) TotalEstimate() float64 {
	var total float64
	for _, st := range g.SubTasks {
		total += st.Estimate
	}
	return total
}

// Groups is an insertion-ordered mapping from task name to group
type Groups struct {
	keys  []string
	index map[string]*Group
}

// NewGroups creates an empty ordered mapping
func NewGroups() *Groups {
	return &Groups{index: make(map[string]*Group)}
}

// Len returns the number of groups
func (g *Groups) Len() int {
	return len(g.keys)
}

// Keys returns task names in first-seen order
func (g *Groups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the group for name
func (g *Groups) Get(name string) (*Group, bool) {
	grp, ok := g.index[name]
	return grp, ok
}

// All returns the groups in first-seen order
func (g *Groups) All() []*Group {
	out := make([]*Group, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.index[k])
	}
	return out
}

// SubTaskCount returns the number of children across all groups
func (g *Groups) SubTaskCount() int {
	n := 0
	for _, grp := range g.index {
		n += len(grp.SubTasks)
	}
	return n
}

// getOrAdd returns the existing group for name or appends a new one
func (g *Groups) getOrAdd(name string, create func() *Group) *Group {
	if grp, ok := g.index[name]; ok {
		return grp
	}
	grp := create()
	g.keys = append(g.keys, name)
	g.index[name] = grp
	return grp
}
