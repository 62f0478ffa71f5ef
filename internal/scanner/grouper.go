package scanner

import "sort"

// buildGroups assembles hashed entries into duplicate groups. The
// input is in discovery order, so group members come out in discovery
// order too and the default keep member (index 0) is the earliest
// discovered copy. Singleton digests never materialize into a group.
func buildGroups(hashed []HashedEntry) []DuplicateGroup {
	order := make([]Digest, 0, len(hashed)/2)
	byDigest := make(map[Digest][]FileEntry, len(hashed))

	for _, h := range hashed {
		if _, ok := byDigest[h.Digest]; !ok {
			order = append(order, h.Digest)
		}
		byDigest[h.Digest] = append(byDigest[h.Digest], h.FileEntry)
	}

	groups := make([]DuplicateGroup, 0, len(order))
	for _, digest := range order {
		files := byDigest[digest]
		if len(files) < 2 {
			continue
		}

		size := files[0].Size
		groups = append(groups, DuplicateGroup{
			Digest:      digest,
			Files:       files,
			Keep:        0,
			Size:        size,
			WastedBytes: size * int64(len(files)-1),
		})
	}

	sortGroups(groups)
	return groups
}

// sortGroups orders groups by reclaimable space, largest first. Ties
// fall back to member count, then to the smallest member path, so the
// ordering is identical across runs on an unchanged tree.
func sortGroups(groups []DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedBytes != groups[j].WastedBytes {
			return groups[i].WastedBytes > groups[j].WastedBytes
		}
		if len(groups[i].Files) != len(groups[j].Files) {
			return len(groups[i].Files) > len(groups[j].Files)
		}
		return minPath(&groups[i]) < minPath(&groups[j])
	})
}

// minPath returns the lexicographically smallest member path
func minPath(g *DuplicateGroup) string {
	smallest := g.Files[0].Path
	for _, f := range g.Files[1:] {
		if f.Path < smallest {
			smallest = f.Path
		}
	}
	return smallest
}
