package index

import (
	"cmp"
	"slices"
)

// CompareNeighbors orders neighbours by ascending distance, then ascending index.
func CompareNeighbors(a, b Neighbor) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// SortNeighbors sorts in place by (distance, index).
func SortNeighbors(ns []Neighbor) {
	slices.SortFunc(ns, CompareNeighbors)
}

// Indices returns the point indices of ns in order.
func Indices(ns []Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index
	}
	return out
}
