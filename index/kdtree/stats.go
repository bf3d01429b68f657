package kdtree

// Stats describes the shape of a built tree.
type Stats struct {
	Points      int   // indexed points
	LeafSize    int   // configured leaf size
	Depth       int   // longest root-to-leaf path, counted in splits
	Splits      int   // internal nodes
	Leaves      int   // leaf ranges, empty ranges excluded
	MemoryBytes int64 // bytes owned by the tree
}

// Stats walks the tree and reports its shape.
func (t *Tree) Stats() Stats {
	st := Stats{
		Points:      len(t.perm),
		LeafSize:    t.leafSize,
		MemoryBytes: t.MemoryUsage(),
	}

	t.walk(func(lo, hi, mid, axis, depth int) {
		if mid < 0 {
			if hi > lo {
				st.Leaves++
			}
			st.Depth = max(st.Depth, depth)
			return
		}
		st.Splits++
	})

	return st
}

// walk calls fn for every node in pre-order. Leaves are reported with mid = -1.
func (t *Tree) walk(fn func(lo, hi, mid, axis, depth int)) {
	var rec func(lo, hi, axis, depth int)
	rec = func(lo, hi, axis, depth int) {
		if t.isLeaf(lo, hi) {
			fn(lo, hi, -1, axis, depth)
			return
		}
		mid := lo + (hi-lo)/2
		fn(lo, hi, mid, axis, depth)
		rec(lo, mid, 1-axis, depth+1)
		rec(mid+1, hi, 1-axis, depth+1)
	}
	rec(0, len(t.perm), 0, 0)
}
