// Package index provides the shared types and contracts of the spatial indexes.
//
// Two implementations live in subpackages:
//
//   - kdtree: balanced 2-D k-d tree with bounding-region pruning
//   - flat: exact linear scan, used for tiny point sets and as a reference
//
// # Distances
//
// All indexes use Euclidean distance. Ordering and radius membership are decided
// on squared distances (dx*dx + dy*dy); the reported Distance is the square root.
//
// # Searcher Interface
//
//	type Searcher interface {
//	    Len() int
//	    KNearest(q Coord, k int, filter Filter) ([]Neighbor, error)
//	    Radius(q Coord, r float64, filter Filter) ([]Neighbor, error)
//	}
//
// Implementations are immutable after construction and safe for concurrent queries.
package index
