package unit

// GroupCount is the number of variants in one group.
type GroupCount struct {
	GroupID string
	Count   int
}

// Summarize maps every group id to the number of variants assigned to it.
func Summarize(c *Collection) map[string]int {
	counts := make(map[string]int, c.Len())
	for _, u := range c.units {
		counts[u.GroupID] = len(u.Variants)
	}
	return counts
}

// UniqueGroupCount returns the number of distinct groups, which equals the
// number of keys of Summarize.
func UniqueGroupCount(c *Collection) int {
	return len(Summarize(c))
}

// Counts returns the per-group counts in collection order.
func Counts(c *Collection) []GroupCount {
	out := make([]GroupCount, len(c.units))
	for i, u := range c.units {
		out[i] = GroupCount{GroupID: u.GroupID, Count: len(u.Variants)}
	}
	return out
}

// Stats describes the distribution of unit sizes.
type Stats struct {
	Groups   int
	Variants int
	Min      int
	Max      int
	Mean     float64
}

// SizeStats returns the unit size distribution. All fields are zero for an
// empty collection.
func SizeStats(c *Collection) Stats {
	return CountStats(Counts(c))
}

// CountStats returns the size distribution of groups with the given counts.
func CountStats(counts []GroupCount) Stats {
	var s Stats
	for i, gc := range counts {
		if i == 0 || gc.Count < s.Min {
			s.Min = gc.Count
		}
		if gc.Count > s.Max {
			s.Max = gc.Count
		}
		s.Variants += gc.Count
	}
	s.Groups = len(counts)
	if s.Groups > 0 {
		s.Mean = float64(s.Variants) / float64(s.Groups)
	}
	return s
}
