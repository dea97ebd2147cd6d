package domain

import "sort"

// SnapshotKey names the persisted set of already-notified order ids.
const SnapshotKey = "orders.notified"

// SeenSet records order ids the operator has already been notified about.
// It only grows; Reset is the single way to shrink it.
type SeenSet map[string]struct{}

// NewSeenSet builds a set from ids, ignoring blanks.
func NewSeenSet(ids ...string) SeenSet {
	set := make(SeenSet, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s SeenSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s SeenSet) Clone() SeenSet {
	out := make(SeenSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the members sorted for stable persistence.
func (s SeenSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Detection is the outcome of diffing one fetch against the seen set.
type Detection struct {
	NewOrder  *Order
	Seen      SeenSet
	Added     []string
	ColdStart bool
}

// Detect applies the first-new policy: the earliest unseen order in response
// order is reported, and every unseen id is folded into the returned set.
// With an empty seen set nothing is reported.
func Detect(fetched []Order, seen SeenSet) Detection {
	updated := seen.Clone()
	result := Detection{ColdStart: seen.Len() == 0}
	for i := range fetched {
		id := fetched[i].ID
		if id == "" || updated.Has(id) {
			continue
		}
		updated[id] = struct{}{}
		result.Added = append(result.Added, id)
		if result.NewOrder == nil && !result.ColdStart {
			order := fetched[i]
			result.NewOrder = &order
		}
	}
	result.Seen = updated
	return result
}
