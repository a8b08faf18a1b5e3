package extractor

import (
	"fmt"
	"strings"
)

// SystemInstruction is installed on the model once.
const SystemInstruction = "You are a warehouse document reader. You read photographs of delivery challans and product stickers and transcribe them into strictly valid JSON. You never add commentary."

// ChallanSchema describes the object expected for a challan.
const ChallanSchema = `{
  "challan_number": "string | null",
  "date": "YYYY-MM-DD | null",
  "lines": [
    {
      "sto_sku": "string | null",
      "material_description": "string",
      "hsn": "string | null",
      "size": "string",
      "qty_units_expected": "integer"
    }
  ]
}`

// StickerSchema describes the object expected for a sticker.
const StickerSchema = `{
  "style": "string",
  "code_size": "string",
  "mrp": "number | null",
  "net_qty": "integer | null"
}`

const promptTemplate = `Analyze the provided image of a '%s'.
Your task is to extract the key information and return ONLY a single, strictly valid JSON object that conforms precisely to the schema below.
Do not add any explanatory text, comments, or markdown formatting like code fences. Your entire response must be the JSON object itself.

Key instructions:
- For CHALLANS, 'sto_sku' is the numeric code in the 'STO' column and 'material_description' is the text in the 'Material Description' column. Extract them as separate fields and never merge them.
- For CHALLANS with a grid of sizes, create a separate line item for each size and its quantity. The size of the product is taken from that grid.
- For STICKERS, 'code_size' is the most prominent size indicator, printed next to "Code:" (for example 'S' or '36B').
- The quantity on a challan is always the number of boxes, not the individual units inside them.

Schema to follow:
%s
`

// SchemaFor returns the JSON schema text for a document type.
func SchemaFor(t DocumentType) string {
	if t == DocumentChallan {
		return ChallanSchema
	}
	return StickerSchema
}

// BuildPrompt returns the user prompt sent alongside the image.
func BuildPrompt(t DocumentType) string {
	return fmt.Sprintf(promptTemplate, t, SchemaFor(t))
}

// CleanResponse strips surrounding whitespace and markdown code fences.
func CleanResponse(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func normalizeType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
