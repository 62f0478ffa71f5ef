package scanner

// sizeIndex buckets file entries by exact byte length. A length with a
// single member cannot be part of a duplicate pair, so only buckets
// with two or more members survive as hash candidates. The index is
// transient; it lives only between enumeration and candidate selection.
type sizeIndex struct {
	buckets map[int64][]int // size -> entry indexes, discovery order
}

func newSizeIndex() *sizeIndex {
	return &sizeIndex{
		buckets: make(map[int64][]int),
	}
}

// add records an entry index under its size
func (ix *sizeIndex) add(idx int, size int64) {
	ix.buckets[size] = append(ix.buckets[size], idx)
}

// needsHash reports whether entries of this size require hashing to
// resolve duplication. Zero-byte files never need hashing; they are
// identical by definition.
func (ix *sizeIndex) needsHash(size int64) bool {
	return size > 0 && len(ix.buckets[size]) >= 2
}

// grouped reports whether entries of this size can appear in a group
// at all (two or more members share the size).
func (ix *sizeIndex) grouped(size int64) bool {
	return len(ix.buckets[size]) >= 2
}

// stats returns the number of candidate files and their combined size.
// Zero-byte buckets are excluded; they bypass the hasher.
func (ix *sizeIndex) stats() (files int, bytes int64) {
	for size, members := range ix.buckets {
		if size == 0 || len(members) < 2 {
			continue
		}
		files += len(members)
		bytes += size * int64(len(members))
	}
	return files, bytes
}
