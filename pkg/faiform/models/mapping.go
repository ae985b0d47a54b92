package models

// NumberMapping records old bubble number to new bubble number after a
// renumber pass. It is produced by the reconciler, consumed once by the
// bubble synchronizer, then discarded.
type NumberMapping map[int]int

// Normalized returns a copy restricted to positive, changed entries.
func (m NumberMapping) Normalized() NumberMapping {
	out := make(NumberMapping, len(m))
	for old, now := range m {
		if old > 0 && now > 0 && old != now {
			out[old] = now
		}
	}
	return out
}
