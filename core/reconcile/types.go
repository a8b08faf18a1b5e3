package reconcile

import "github.com/shopspring/decimal"

// ChallanLine is one expected line item of a delivery challan.
type ChallanLine struct {
	// STOSKU is the numeric code from the STO column, if extracted.
	STOSKU *string `json:"sto_sku"`

	// Description is the material description. It may be empty when the
	// extractor could not populate it.
	Description string `json:"material_description"`

	// HSN is the tax classification code, if extracted.
	HSN *string `json:"hsn"`

	// Size is compared case-insensitively and whitespace-trimmed.
	Size string `json:"size"`

	// ExpectedQty counts shipping units (boxes), not pieces inside them.
	ExpectedQty int `json:"qty_units_expected"`
}

// Challan is the delivery document a session reconciles against.
type Challan struct {
	Number *string       `json:"challan_number"`
	Date   *Date         `json:"date"`
	Lines  []ChallanLine `json:"lines"`
}

// HasLines reports whether there is anything to reconcile against.
func (c *Challan) HasLines() bool {
	return c != nil && len(c.Lines) > 0
}

// Clone returns a deep copy of the challan.
func (c *Challan) Clone() *Challan {
	if c == nil {
		return nil
	}
	out := &Challan{
		Number: cloneString(c.Number),
	}
	if c.Date != nil {
		d := *c.Date
		out.Date = &d
	}
	if c.Lines != nil {
		out.Lines = make([]ChallanLine, len(c.Lines))
		for i, l := range c.Lines {
			l.STOSKU = cloneString(l.STOSKU)
			l.HSN = cloneString(l.HSN)
			out.Lines[i] = l
		}
	}
	return out
}

// Sticker is one scanned product sticker. Each sticker stands for exactly
// one physical unit.
type Sticker struct {
	// Style is expected to be a prefix of a challan line description.
	Style string `json:"style"`

	// CodeSize is the size printed next to "Code:" on the sticker.
	CodeSize string `json:"code_size"`

	// MRP and NetQty are informational and never used for matching.
	MRP    *decimal.Decimal `json:"mrp"`
	NetQty *int             `json:"net_qty"`
}

// CloneStickers returns a deep copy of a sticker slice.
func CloneStickers(in []Sticker) []Sticker {
	if in == nil {
		return nil
	}
	out := make([]Sticker, len(in))
	for i, s := range in {
		if s.MRP != nil {
			m := *s.MRP
			s.MRP = &m
		}
		if s.NetQty != nil {
			n := *s.NetQty
			s.NetQty = &n
		}
		out[i] = s
	}
	return out
}

// ExpectedKey buckets challan lines: trimmed description and trimmed,
// upper-cased size.
type ExpectedKey struct {
	Description string `json:"description"`
	Size        string `json:"size"`
}

// Counter accumulates expected and received units for one key.
type Counter struct {
	Expected int `json:"expected"`
	Received int `json:"received"`
}

// Status classifies a report row.
type Status string

const (
	// StatusMatch means received equals expected.
	StatusMatch Status = "MATCH"
	// StatusShort means fewer units were received than expected.
	StatusShort Status = "SHORT"
	// StatusOver means more units were received than expected.
	StatusOver Status = "OVER"
)

// StatusForVariance maps a variance to its status.
func StatusForVariance(variance int) Status {
	switch {
	case variance == 0:
		return StatusMatch
	case variance < 0:
		return StatusShort
	default:
		return StatusOver
	}
}

// UnmatchedPrefix marks report rows produced by stickers that matched no
// challan line.
const UnmatchedPrefix = "(UNMATCHED SCAN) "

// Row is one line of the variance report.
type Row struct {
	Description string `json:"description"`
	Size        string `json:"size"`
	Expected    int    `json:"expected"`
	Received    int    `json:"received"`
	Variance    int    `json:"variance"`
	Status      Status `json:"status"`

	// Unmatched is set for rows that come from an unmatched sticker.
	Unmatched bool `json:"unmatched"`
}

// Summary aggregates a report the way the dashboard shows it.
type Summary struct {
	Lines     int `json:"lines"`
	Stickers  int `json:"stickers"`
	Matches   int `json:"matches"`
	Shortages int `json:"shortages"`
	Overages  int `json:"overages"`
	Unmatched int `json:"unmatched"`
}

// Report is the outcome of one reconciliation run.
type Report struct {
	ChallanNumber *string `json:"challan_number"`
	ChallanDate   *Date   `json:"challan_date"`
	Rows          []Row   `json:"rows"`
	Summary       Summary `json:"summary"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
