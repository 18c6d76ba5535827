package scope

// Aggregation over the domain tree. Hours and date ranges of composite nodes
// are always derived from their descendants, never entered directly, so a
// feature's stated estimate can't drift from the sum of its sub-items. All
// three functions are pure reads; nothing is cached.

// TotalHours returns the estimated hours of a subtree: the node's own
// estimate for leaves, the sum over children otherwise. A composite node's
// own EstimatedHours is ignored.
func (e *Editor) TotalHours(id NodeID) float64 {
	n, ok := e.nodes[id]
	if !ok {
		return 0
	}
	kids := e.children[id]
	if len(kids) == 0 {
		return n.EstimatedHours
	}
	var sum float64
	for _, c := range kids {
		sum += e.TotalHours(c)
	}
	return sum
}

// EarliestStart returns the minimum defined start date in a subtree, or ""
// when none is set. ISO YYYY-MM-DD strings order correctly under string
// comparison.
func (e *Editor) EarliestStart(id NodeID) string {
	n, ok := e.nodes[id]
	if !ok {
		return ""
	}
	min := n.StartDate
	for _, c := range e.children[id] {
		if d := e.EarliestStart(c); d != "" && (min == "" || d < min) {
			min = d
		}
	}
	return min
}

// LatestTarget returns the maximum defined target date in a subtree, or ""
// when none is set.
func (e *Editor) LatestTarget(id NodeID) string {
	n, ok := e.nodes[id]
	if !ok {
		return ""
	}
	max := n.TargetDate
	for _, c := range e.children[id] {
		if d := e.LatestTarget(c); d != "" && (max == "" || d > max) {
			max = d
		}
	}
	return max
}

// ContainerTotals folds the three aggregates over every root of the
// container, for the summary header.
func (e *Editor) ContainerTotals() (hours float64, earliestStart, latestTarget string) {
	for _, r := range e.roots {
		hours += e.TotalHours(r)
		if d := e.EarliestStart(r); d != "" && (earliestStart == "" || d < earliestStart) {
			earliestStart = d
		}
		if d := e.LatestTarget(r); d != "" && (latestTarget == "" || d > latestTarget) {
			latestTarget = d
		}
	}
	return hours, earliestStart, latestTarget
}
