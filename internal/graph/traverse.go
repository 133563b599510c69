package graph

// Descendants returns the seeds plus every task reachable from them through
// parent-to-child links. The walk is breadth first and marks ids visited
// before queueing them, so cyclic parent links terminate.
func Descendants(seeds []string, ix *Index) IDSet {
	visited := make(IDSet, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if id == "" {
			continue
		}
		if visited.Add(id) {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range ix.ChildrenOf(id) {
			if visited.Add(child.ID) {
				queue = append(queue, child.ID)
			}
		}
	}
	return visited
}

// ResolveProjectID walks up from taskID through parent links and returns the
// project id of the first task that carries one. It returns "" when the chain
// ends, dangles, or loops without reaching a project.
func ResolveProjectID(ix *Index, taskID string) string {
	seen := IDSet{}
	current := taskID
	for current != "" {
		if !seen.Add(current) {
			return ""
		}
		t, ok := ix.Task(current)
		if !ok {
			return ""
		}
		if t.ProjectID != "" {
			return t.ProjectID
		}
		current = t.ParentTaskID
	}
	return ""
}
