// Package dedup reconciles freshly parsed flights against the set of
// previously emitted identifiers.
package dedup

import "github.com/jonesrussell/flightwatch/internal/domain"

// SeenSet is the set of flight identifiers already emitted by prior runs.
type SeenSet map[string]struct{}

// NewSeenSet builds a SeenSet from a list of identifiers.
func NewSeenSet(ids []string) SeenSet {
	set := make(SeenSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set.
func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s SeenSet) Add(id string) {
	s[id] = struct{}{}
}

// Partition splits flights into fresh (not previously seen) and
// duplicates, preserving board order. Within one run the first
// occurrence of an identifier wins; later occurrences of the same
// identifier count as duplicates. The seen set is not mutated.
func Partition(seen SeenSet, flights []domain.Flight) (fresh, dupes []domain.Flight) {
	inRun := make(SeenSet, len(flights))

	for _, f := range flights {
		if seen.Contains(f.ID) || inRun.Contains(f.ID) {
			dupes = append(dupes, f)
			continue
		}
		inRun.Add(f.ID)
		fresh = append(fresh, f)
	}

	return fresh, dupes
}
