package reconcile

import "strings"

// ExpectedIndex maps expected keys to counters and remembers the order in
// which keys were first seen. Report rows follow that order.
type ExpectedIndex struct {
	keys     []ExpectedKey
	counters map[ExpectedKey]*Counter
}

func newExpectedIndex(capacity int) *ExpectedIndex {
	return &ExpectedIndex{
		keys:     make([]ExpectedKey, 0, capacity),
		counters: make(map[ExpectedKey]*Counter, capacity),
	}
}

// Len returns the number of distinct keys.
func (idx *ExpectedIndex) Len() int {
	return len(idx.keys)
}

// Keys returns the keys in first-seen order.
func (idx *ExpectedIndex) Keys() []ExpectedKey {
	out := make([]ExpectedKey, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Counter returns the counter for key.
func (idx *ExpectedIndex) Counter(key ExpectedKey) (Counter, bool) {
	c, ok := idx.counters[key]
	if !ok {
		return Counter{}, false
	}
	return *c, true
}

// KeyForLine derives the bucket key of a challan line.
func KeyForLine(line ChallanLine) ExpectedKey {
	return ExpectedKey{
		Description: strings.TrimSpace(line.Description),
		Size:        normalizeSize(line.Size),
	}
}

// BuildExpectedIndex buckets the challan lines by key and sums their
// expected quantities. Lines sharing a key (a size grid split over several
// rows, for instance) collapse into one counter. Negative quantities count
// as zero. A nil challan yields an empty index.
func BuildExpectedIndex(challan *Challan) *ExpectedIndex {
	if challan == nil {
		return newExpectedIndex(0)
	}

	idx := newExpectedIndex(len(challan.Lines))
	for _, line := range challan.Lines {
		key := KeyForLine(line)
		c, ok := idx.counters[key]
		if !ok {
			c = &Counter{}
			idx.counters[key] = c
			idx.keys = append(idx.keys, key)
		}
		if line.ExpectedQty > 0 {
			c.Expected += line.ExpectedQty
		}
	}
	return idx
}

// MatchStickers credits each sticker to the first key, in first-seen
// order, whose description starts with the sticker style (case-sensitive)
// and whose size equals the normalized sticker size. Stickers that match
// no key are returned in scan order.
//
// First match wins: when several keys share a style prefix and size the
// earliest one takes every unit. idx is updated in place.
func MatchStickers(idx *ExpectedIndex, stickers []Sticker) []Sticker {
	var unmatched []Sticker
	for _, s := range stickers {
		if key, ok := idx.match(s); ok {
			idx.counters[key].Received++
			continue
		}
		unmatched = append(unmatched, s)
	}
	return unmatched
}

func (idx *ExpectedIndex) match(s Sticker) (ExpectedKey, bool) {
	style := strings.TrimSpace(s.Style)
	size := normalizeSize(s.CodeSize)
	for _, key := range idx.keys {
		if key.Size == size && strings.HasPrefix(key.Description, style) {
			return key, true
		}
	}
	return ExpectedKey{}, false
}

// BuildReport emits one row per key in first-seen order followed by one
// OVER row per unmatched sticker in scan order.
func BuildReport(idx *ExpectedIndex, unmatched []Sticker) []Row {
	rows := make([]Row, 0, idx.Len()+len(unmatched))
	for _, key := range idx.keys {
		c := idx.counters[key]
		variance := c.Received - c.Expected
		rows = append(rows, Row{
			Description: key.Description,
			Size:        key.Size,
			Expected:    c.Expected,
			Received:    c.Received,
			Variance:    variance,
			Status:      StatusForVariance(variance),
		})
	}
	for _, s := range unmatched {
		rows = append(rows, Row{
			Description: UnmatchedPrefix + s.Style,
			Size:        s.CodeSize,
			Expected:    0,
			Received:    1,
			Variance:    1,
			Status:      StatusOver,
			Unmatched:   true,
		})
	}
	return rows
}

// Reconcile runs the full pipeline over a challan and the stickers scanned
// against it. It fails only with ErrNoChallan, checked before any matching.
// Neither input is modified.
func Reconcile(challan *Challan, stickers []Sticker) (*Report, error) {
	if !challan.HasLines() {
		return nil, ErrNoChallan
	}

	idx := BuildExpectedIndex(challan)
	unmatched := MatchStickers(idx, stickers)
	rows := BuildReport(idx, unmatched)

	report := &Report{
		ChallanNumber: cloneString(challan.Number),
		Rows:          rows,
		Summary:       Summarize(rows),
	}
	if challan.Date != nil {
		d := *challan.Date
		report.ChallanDate = &d
	}
	report.Summary.Lines = len(challan.Lines)
	report.Summary.Stickers = len(stickers)
	return report, nil
}

// Summarize counts rows per status. Lines and Stickers are left for the
// caller, which knows the inputs.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		switch r.Status {
		case StatusMatch:
			s.Matches++
		case StatusShort:
			s.Shortages++
		case StatusOver:
			s.Overages++
		}
		if r.Unmatched {
			s.Unmatched++
		}
	}
	return s
}

func normalizeSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}
