// Package mmap provides read-only memory-mapped file access.
//
// The local blob store maps input matrices instead of copying them through
// kernel buffers; the matrix decoders then read straight from the mapping.
//
//	m, err := mmap.Open("data.npy")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// On Unix the file is mapped with mmap(2). On other platforms the file is
// read into memory, which keeps the API identical.
package mmap
