// Package kdnn answers nearest-neighbour questions over a labeled 2-D point cloud.
//
// A PointSet is loaded once from a CSV source and indexed by a static k-d tree.
// The index answers two questions about any query coordinate: which k points
// are closest, and which points lie within a given distance.
//
// # Quick Start
//
//	ctx := context.Background()
//	ps, _ := kdnn.LoadFile(ctx, "cities.csv")
//	idx, _ := kdnn.NewIndex(ps)
//
//	nearest, _ := idx.KNearest(kdnn.Coord{X: 1, Y: 1}, 8)
//	within, _ := idx.Radius(kdnn.Coord{X: 1, Y: 1}, 12)
//
// # Input Format
//
// Sources are comma-separated text with a header line and three columns
// per record: x, y and an unsigned integer label.
//
//	p1,p2,label
//	0,0,1
//	10,0,2
//
// Lines starting with '#' and blank lines are ignored. A UTF-8 byte order
// mark is stripped. Gzip, zstd and lz4 inputs are decompressed transparently
// when read through LoadBlob or LoadFile.
//
// Blobs can come from the local filesystem, memory, S3 or MinIO:
//
//	store, _ := s3.New(ctx, "datasets", s3.WithPrefix("points/"))
//	ps, _ := kdnn.LoadBlob(ctx, store, "cities.csv.zst")
//
// # Results
//
// KNearest returns min(k, n) neighbours ordered by ascending distance, ties
// broken by ascending point index. Radius returns every point whose squared
// distance is at most r*r, in tree order; SortByDistance orders them.
// Results can be restricted to a set of labels:
//
//	idx.KNearest(q, 8, kdnn.WithLabels(1, 3))
//
// # Concurrency
//
// PointSet and Index are immutable after construction and safe for
// concurrent queries. BatchKNearest and BatchRadius fan queries out over a
// bounded worker pool.
package kdnn
