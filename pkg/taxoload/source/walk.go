package source

// Visit is one step of a category tree traversal.
type Visit struct {
	Node   *CategoryNode
	Parent *CategoryNode // nil for the roots passed to Walk
	Depth  int
}

// Walk returns every node of the given trees in depth-first pre-order.
//
// The traversal uses an explicit stack, so tree depth is bounded only by
// memory, and each node occurrence is visited exactly once. The returned
// pointers alias the input slices.
func Walk(roots []CategoryNode) []Visit {
	var visited []Visit
	stack := make([]Visit, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, Visit{Node: &roots[i]})
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited = append(visited, v)

		children := v.Node.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, Visit{Node: &children[i], Parent: v.Node, Depth: v.Depth + 1})
		}
	}
	return visited
}
