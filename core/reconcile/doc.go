// Package reconcile compares a delivery challan with the product stickers
// scanned on arrival and reports shortages and overages per
// (description, size) pair.
//
// The engine is a pipeline of three pure steps:
//
//  1. BuildExpectedIndex buckets challan lines by key (trimmed description,
//     trimmed upper-cased size) and sums expected quantities, keeping the
//     order in which keys were first seen.
//  2. MatchStickers credits each sticker to the first key whose description
//     starts with the sticker style and whose size equals the sticker size.
//     Stickers without a match are kept aside in scan order.
//  3. BuildReport emits one row per key followed by one OVER row per
//     unmatched sticker.
//
// Reconcile wires the three together and enforces the single precondition:
// a challan with at least one line must be present (ErrNoChallan otherwise).
// Everything else, from empty descriptions to zero quantities, surfaces as
// report data rather than as an error.
//
// The package performs no I/O and keeps no state between calls, so it is safe
// to call concurrently on independent inputs.
//
// # Usage
//
//	report, err := reconcile.Reconcile(challan, stickers)
//	if errors.Is(err, reconcile.ErrNoChallan) {
//	    // ask the operator for a challan
//	}
//	for _, row := range report.Rows {
//	    fmt.Println(row.Description, row.Size, row.Variance, row.Status)
//	}
package reconcile
