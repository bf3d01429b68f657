// Package testutil provides testing utilities for kdnn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point clouds and computing exact
// neighbour sets by sorting, independent of any index implementation.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformCoords(1000, 0, 100)       // uniform square
//	pts = rng.ClusteredCoords(1000, 5, 2, 100)   // tight blobs
//	pts = rng.GridCoords(1000, 10)                // lattice with duplicates
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceKNearest(pts, q, k)
//	want = testutil.BruteForceRadius(pts, q, r)
//
// # CSV Fixtures
//
//	data := testutil.CSV(pts, labels)
package testutil
