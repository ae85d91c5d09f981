package graph

// GetCycles returns every strongly connected component of size >= 2, plus
// every single-node self-loop (a file that imports itself), ordered by
// first discovery during a single depth-first traversal over all nodes in
// insertion order. This is Tarjan's algorithm: linear in graph size, and
// the traversal order over ID-indexed adjacency lists makes the result
// deterministic for a given sequence of graph mutations.
func (g *Graph) GetCycles() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := &tarjan{
		graph:   g,
		index:   make([]int, len(g.nodes)),
		low:     make([]int, len(g.nodes)),
		onStack: make([]bool, len(g.nodes)),
	}
	for i := range t.index {
		t.index[i] = -1
	}

	var cycles [][]string
	for id := range g.nodes {
		if t.index[id] == -1 {
			t.strongConnect(id, &cycles)
		}
	}
	return cycles
}

// tarjan holds the mutable state of one Tarjan's SCC run over a Graph.
type tarjan struct {
	graph *Graph

	counter int
	index   []int
	low     []int
	onStack []bool
	stack   []int
}

func (t *tarjan) strongConnect(v int, cycles *[][]string) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range t.graph.forward[v] {
		w := e.to
		switch {
		case t.index[w] == -1:
			t.strongConnect(w, cycles)
			if t.low[w] < t.low[v] {
				t.low[v] = t.low[w]
			}
		case t.onStack[w]:
			if t.index[w] < t.low[v] {
				t.low[v] = t.index[w]
			}
		}
	}

	if t.low[v] != t.index[v] {
		return
	}

	// v is the root of an SCC: pop the stack down to and including v.
	var component []int
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}

	if len(component) >= 2 || t.hasSelfLoop(v) {
		paths := make([]string, len(component))
		for i, id := range component {
			paths[i] = t.graph.nodes[id].Path
		}
		*cycles = append(*cycles, paths)
	}
}

// hasSelfLoop reports whether node v has an edge back to itself.
func (t *tarjan) hasSelfLoop(v int) bool {
	for _, e := range t.graph.forward[v] {
		if e.to == v {
			return true
		}
	}
	return false
}
