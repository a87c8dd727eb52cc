package txfeed

import "time"

// ClassifiedTransfer is a raw transfer enriched with the viewer-relative
// state and the time bucket it belongs to. It is rebuilt wholesale on every
// fetch, never mutated in place.
type ClassifiedTransfer struct {
	Transfer

	State      TransferState
	TimeBucket string
}

// Section is one renderable group of transfers sharing a time bucket.
type Section struct {
	Label string
	Items []ClassifiedTransfer
}

// classifyAll enriches every transfer with its state and time bucket,
// preserving the input order.
func classifyAll(transfers []Transfer, viewerAddress string, now time.Time) []ClassifiedTransfer {
	out := make([]ClassifiedTransfer, len(transfers))
	for i, t := range transfers {
		out[i] = ClassifiedTransfer{
			Transfer:   t,
			State:      Classify(t, viewerAddress),
			TimeBucket: Bucket(time.UnixMilli(t.Timestamp), now),
		}
	}
	return out
}

// buildSections groups classified transfers by time bucket. Sections appear
// in first-appearance order of each bucket in the source list, and items
// keep the indexer's original ordering inside each section. With a
// newest-first source this naturally yields newest-first sections; the
// pipeline never re-sorts.
func buildSections(items []ClassifiedTransfer) []Section {
	var (
		sections []Section
		indexOf  = make(map[string]int)
	)

	for _, item := range items {
		idx, seen := indexOf[item.TimeBucket]
		if !seen {
			idx = len(sections)
			indexOf[item.TimeBucket] = idx
			sections = append(sections, Section{Label: item.TimeBucket})
		}
		sections[idx].Items = append(sections[idx].Items, item)
	}

	return sections
}
