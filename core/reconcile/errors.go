package reconcile

import "errors"

// ErrNoChallan is returned when reconciliation is requested without a
// challan or with a challan that has no line items. Callers must collect a
// challan first; retrying with the same input cannot succeed.
var ErrNoChallan = errors.New("no challan data to reconcile, upload a challan first")
