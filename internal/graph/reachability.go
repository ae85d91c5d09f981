package graph

// FindReachable runs a breadth-first search from the union of entry-point
// nodes over the forward edge relation, ignoring edge kind entirely: a
// TypeImport edge bars its target from being dead just as an Import edge
// does (see the spec's "Open Questions" on TypeImport reachability -
// DESIGN.md records this as the implemented, non-optional behavior).
//
// Iteration over each node's adjacency list follows insertion order, and
// the BFS queue is a plain FIFO, so two runs over an identical graph visit
// nodes in the same order and produce an identical reachable set - this is
// the determinism the spec's property #2 (reachability monotonicity) and
// property #5 (determinism) depend on.
func (g *Graph) FindReachable() map[string]bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	reachable := make(map[int]bool, len(g.nodes))
	queue := make([]int, 0, len(g.entryOrder))
	for _, id := range g.entryOrder {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.forward[cur] {
			if !reachable[e.to] {
				reachable[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}

	out := make(map[string]bool, len(reachable))
	for id := range reachable {
		out[g.nodes[id].Path] = true
	}
	return out
}
