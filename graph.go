package dependent

// graph is the dependency graph of one schema: a directed acyclic graph
// over attribute indices, where an edge u->v means "v reads u". It is
// built during declaration and never mutated after the schema freezes,
// so instances share it read-only.
type graph struct {
	// Adjacency lists indexed by attribute index.
	upstream   [][]int
	downstream [][]int
}

func newGraph() *graph {
	return &graph{}
}

// addNode registers a new attribute and returns its index.
func (g *graph) addNode() int {
	g.upstream = append(g.upstream, nil)
	g.downstream = append(g.downstream, nil)
	return len(g.upstream) - 1
}

// addEdge records that `to` reads `from`. Returns false without mutating
// the graph if the edge would create a cycle.
func (g *graph) addEdge(from, to int) bool {
	if from == to || g.reachable(to, from) {
		return false
	}

	g.downstream[from] = appendUnique(g.downstream[from], to)
	g.upstream[to] = appendUnique(g.upstream[to], from)
	return true
}

// reachable reports whether dst can be reached from src by following
// downstream edges.
func (g *graph) reachable(src, dst int) bool {
	if src == dst {
		return true
	}

	stack := make([]int, 0, 32)
	stack = append(stack, src)
	visited := make(map[int]bool, 32)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range g.downstream[current] {
			if next == dst {
				return true
			}
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}

	return false
}

// pathBetween returns one downstream path from src to dst inclusive, or
// nil if dst is unreachable. Used to report cycle paths in errors.
func (g *graph) pathBetween(src, dst int) []int {
	parent := map[int]int{src: src}
	stack := []int{src}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range g.downstream[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == dst {
				path := []int{dst}
				for at := dst; at != src; at = parent[at] {
					path = append(path, parent[at])
				}
				reverse(path)
				return path
			}
			stack = append(stack, next)
		}
	}

	if src == dst {
		return []int{src}
	}
	return nil
}

// descendants performs iterative traversal to find all transitive
// downstream attributes of start, excluding start itself. An explicit
// stack avoids recursion on deep graphs.
func (g *graph) descendants(start int) []int {
	stack := make([]int, 0, 32)
	stack = append(stack, start)

	result := make([]int, 0, 32)
	visited := make(map[int]bool, 32)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		if current != start {
			result = append(result, current)
		}

		for _, next := range g.downstream[current] {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}

	return result
}

// dependencies returns a copy of the direct upstream list of idx.
func (g *graph) dependencies(idx int) []int {
	return copyInts(g.upstream[idx])
}

// dependents returns a copy of the direct downstream list of idx.
func (g *graph) dependents(idx int) []int {
	return copyInts(g.downstream[idx])
}

func (g *graph) len() int {
	return len(g.upstream)
}

// Utility functions for working with slices efficiently

func appendUnique[T comparable](slice []T, item T) []T {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}

func copyInts(src []int) []int {
	if len(src) == 0 {
		return nil
	}
	dst := make([]int, len(src))
	copy(dst, src)
	return dst
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
