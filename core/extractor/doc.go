// Package extractor turns photographed challans and stickers into typed
// records using a multimodal model.
//
// The model is asked for a single JSON object following a fixed schema.
// Whatever comes back is treated as untrusted: markdown fences are stripped,
// the JSON is parsed into a generic map and every field is coerced into the
// record types of package reconcile. Missing optional fields become nil,
// numeric strings are accepted, negative quantities become zero and a
// malformed date is dropped. Output that is not a JSON object at all fails
// with *ExtractionError, which carries the raw model text.
//
// # Usage
//
//	ex, err := extractor.NewGemini(ctx, cfg.Extractor, log)
//	if err != nil {
//		return err
//	}
//	defer ex.Close()
//
//	challan, err := ex.ExtractChallan(ctx, extractor.Image{Data: data, MIMEType: "image/jpeg"})
//
// The Decode functions are exported so JSON records supplied by hand (CLI
// files, HTTP bodies) pass through the same boundary as model output.
package extractor
