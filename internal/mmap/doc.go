// Package mmap maps point files into memory read-only so the loader can
// parse them without an intermediate copy.
//
//	m, err := mmap.Open("points.csv")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// On platforms without mmap the file is read into memory instead.
package mmap
