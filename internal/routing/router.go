package routing

// Router maps a classification to the tier that will execute the prompt.
type Router struct {
	table     RoutingTable
	threshold float64
}

// NewRouter builds a router. A threshold of 0 disables escalation.
func NewRouter(table RoutingTable, escalationThreshold float64) *Router {
	return &Router{table: table, threshold: escalationThreshold}
}

// Route looks the level up in the table, stepping one level up first when
// confidence is strictly below the threshold. High is never escalated and
// unrecognized levels get the table fallback.
func (r *Router) Route(result ClassificationResult) ModelTier {
	level := result.Complexity
	if !level.Valid() {
		return r.table.Fallback()
	}
	if result.Confidence < r.threshold {
		if next, ok := level.Next(); ok {
			level = next
		}
	}
	return r.table.Lookup(level)
}

func (r *Router) Threshold() float64 {
	return r.threshold
}

func (r *Router) Table() RoutingTable {
	return r.table
}
