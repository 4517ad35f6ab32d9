package identity

import (
	"cmp"
	"slices"
)

// Compare orders identities canonically: release date ascending (unknown
// last), then display name, then raw key so that the order is total.
func Compare(a, b Identity) int {
	return cmp.Or(
		cmp.Compare(a.SortDate(), b.SortDate()),
		cmp.Compare(a.DisplayName, b.DisplayName),
		cmp.Compare(a.Key, b.Key),
	)
}

// Sort sorts ids in canonical order.
func Sort(ids []Identity) {
	slices.SortStableFunc(ids, Compare)
}

// Sorted returns a canonically ordered copy of ids.
func Sorted(ids []Identity) []Identity {
	out := slices.Clone(ids)
	Sort(out)
	return out
}
