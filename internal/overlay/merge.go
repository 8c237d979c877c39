package overlay

import "github.com/sdey02/Signy/internal/label"

// Merge reconciles a mutated single-page working set back into the full
// cross-page collection: every field belonging to other pages is kept in
// its original order, followed by the updated subset for the given page.
// The inputs are never mutated.
func Merge(full []label.Field, pageNumber int, subset []label.Field) []label.Field {
	merged := make([]label.Field, 0, len(full)+len(subset))
	for _, f := range full {
		if f.PageNumber != pageNumber {
			merged = append(merged, f)
		}
	}
	merged = append(merged, subset...)
	return merged
}

// PageSubset filters a collection down to one page's fields, preserving
// order.
func PageSubset(full []label.Field, pageNumber int) []label.Field {
	var subset []label.Field
	for _, f := range full {
		if f.PageNumber == pageNumber {
			subset = append(subset, f)
		}
	}
	return subset
}
