package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"challan-reconciler/core/reconcile"
	"challan-reconciler/core/utils"

	"github.com/shopspring/decimal"
)

var errNotObject = errors.New("response is not a JSON object")

// DecodeChallan coerces a challan JSON object into a record. A missing or
// null "lines" field leaves Lines nil; entries of "lines" that are not
// objects are skipped.
func DecodeChallan(raw []byte) (*reconcile.Challan, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, &ExtractionError{DocType: DocumentChallan, Raw: string(raw), Err: err}
	}
	return challanFromMap(obj), nil
}

// DecodeSticker coerces a single sticker JSON object into a record.
func DecodeSticker(raw []byte) (*reconcile.Sticker, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, &ExtractionError{DocType: DocumentSticker, Raw: string(raw), Err: err}
	}
	s := stickerFromMap(obj)
	return &s, nil
}

// DecodeStickers accepts either one sticker object or an array of them.
func DecodeStickers(raw []byte) ([]reconcile.Sticker, error) {
	v, err := parseValue(raw)
	if err != nil {
		return nil, &ExtractionError{DocType: DocumentSticker, Raw: string(raw), Err: err}
	}

	switch t := v.(type) {
	case map[string]any:
		return []reconcile.Sticker{stickerFromMap(t)}, nil
	case []any:
		out := make([]reconcile.Sticker, 0, len(t))
		for i, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, &ExtractionError{
					DocType: DocumentSticker,
					Raw:     string(raw),
					Err:     fmt.Errorf("sticker %d is not a JSON object", i),
				}
			}
			out = append(out, stickerFromMap(obj))
		}
		return out, nil
	default:
		return nil, &ExtractionError{DocType: DocumentSticker, Raw: string(raw), Err: errNotObject}
	}
}

func challanFromMap(obj map[string]any) *reconcile.Challan {
	c := &reconcile.Challan{
		Number: utils.ToOptionalString(obj["challan_number"]),
	}

	if ds := utils.ToOptionalString(obj["date"]); ds != nil {
		if d, ok := reconcile.ParseDate(*ds); ok {
			c.Date = &d
		}
	}

	items, ok := obj["lines"].([]any)
	if !ok {
		return c
	}
	c.Lines = make([]reconcile.ChallanLine, 0, len(items))
	for _, item := range items {
		line, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c.Lines = append(c.Lines, reconcile.ChallanLine{
			STOSKU:      utils.ToOptionalString(line["sto_sku"]),
			Description: utils.ToString(line["material_description"]),
			HSN:         utils.ToOptionalString(line["hsn"]),
			Size:        utils.ToString(line["size"]),
			ExpectedQty: max(utils.ToInt(line["qty_units_expected"]), 0),
		})
	}
	return c
}

func stickerFromMap(obj map[string]any) reconcile.Sticker {
	s := reconcile.Sticker{
		Style:    utils.ToString(obj["style"]),
		CodeSize: utils.ToString(obj["code_size"]),
		MRP:      toDecimal(obj["mrp"]),
		NetQty:   utils.ToOptionalInt(obj["net_qty"]),
	}
	if s.NetQty != nil && *s.NetQty < 0 {
		zero := 0
		s.NetQty = &zero
	}
	return s
}

var currencyReplacer = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", ",", "", " ", "")

// toDecimal reads a price that may be a number or a printed string such as
// "Rs. 1,299.00". Unreadable values yield nil.
func toDecimal(val any) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := val.(type) {
	case nil:
		return nil
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case string:
		s := currencyReplacer.Replace(strings.TrimSpace(v))
		if s == "" {
			return nil
		}
		d, err = decimal.NewFromString(s)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &d
}

func parseObject(raw []byte) (map[string]any, error) {
	v, err := parseValue(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func parseValue(raw []byte) (any, error) {
	cleaned := CleanResponse(string(raw))
	if cleaned == "" {
		return nil, errors.New("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
