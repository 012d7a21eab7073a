package cfg

// reachableFrom marks every block reachable from start by successor
// edges, including start itself.
func (g *Graph) reachableFrom(start BlockID) []bool {
	seen := make([]bool, len(g.Blocks))
	stack := []BlockID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, s := range g.Blocks[id].Succs {
			if !seen[s] {
				stack = append(stack, s)
			}
		}
	}
	return seen
}

// Unreachable lists non-empty blocks no path from the entry reaches.
// Synthetic blocks (empty continuations, joins) never appear here.
func (g *Graph) Unreachable() []*Block {
	seen := g.reachableFrom(g.Entry)
	var out []*Block
	for _, b := range g.Blocks {
		if !seen[b.ID] && !b.Empty() && b.ID != g.Exit {
			out = append(out, b)
		}
	}
	return out
}

// markCleanup tags labeled blocks that realize the goto-cleanup exit
// idiom: at least one goto jumps in, and everything downstream funnels
// into exactly one return.
func (g *Graph) markCleanup() {
	for _, id := range g.Labels {
		b := g.Blocks[id]
		gotoIn := false
		for _, p := range b.Preds {
			if g.Blocks[p].Term == TermGoto {
				gotoIn = true
				break
			}
		}
		if !gotoIn {
			continue
		}
		seen := g.reachableFrom(id)
		returns := 0
		for _, cand := range g.Blocks {
			if seen[cand.ID] && cand.Term == TermReturn {
				returns++
			}
		}
		if returns == 1 {
			b.Cleanup = true
		}
	}
}

// PathLimits bounds path enumeration. MaxPaths caps the number of
// complete entry-to-exit paths visited; MaxVisits caps how often a
// single block may appear on one path, which bounds loop unrolling.
type PathLimits struct {
	MaxPaths  int
	MaxVisits int
}

// Paths enumerates acyclic-bounded paths from a block to the synthetic
// exit, invoking visit with each complete path. The slice passed to
// visit is reused between calls. visit may return false to abandon the
// enumeration. The return value reports whether every path within the
// limits was seen; false means the caller must not trust absence of a
// path as proof.
func (g *Graph) Paths(from BlockID, limits PathLimits, visit func(path []BlockID) bool) bool {
	visits := make([]int, len(g.Blocks))
	var path []BlockID
	emitted := 0
	complete := true

	var walk func(id BlockID) bool
	walk = func(id BlockID) bool {
		if visits[id] >= limits.MaxVisits {
			// The cap just cut off a branch, so unseen paths exist.
			complete = false
			return true
		}
		visits[id]++
		path = append(path, id)
		defer func() {
			visits[id]--
			path = path[:len(path)-1]
		}()

		if id == g.Exit {
			if emitted >= limits.MaxPaths {
				complete = false
				return false
			}
			emitted++
			return visit(path)
		}
		for _, s := range g.Blocks[id].Succs {
			if !walk(s) {
				complete = false
				return false
			}
		}
		return true
	}
	walk(from)
	return complete
}
