// Package utils provides small helpers shared across the reconciler.
// Most of them coerce loosely typed JSON values (as returned by the document
// extractor) into the typed fields of challan and sticker records.
package utils
