package gemini

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/docmatch/backend/internal/domain"
)

// MapToStructuredDocument converts a decoded model payload into a
// StructuredDocument. Model output is untrusted: absent fields default to
// zero values and numeric-looking strings are coerced instead of failing.
func MapToStructuredDocument(payload map[string]interface{}, docType string) *domain.StructuredDocument {
	doc := &domain.StructuredDocument{
		DocumentType: docType,
		Items:        []domain.LineItem{},
	}

	if v, ok := payload["document_type"].(string); ok && v != "" {
		doc.DocumentType = v
	}
	if v, ok := payload["document_id"].(string); ok {
		doc.DocumentID = v
	}
	if v, ok := payload["vendor_name"].(string); ok {
		doc.VendorName = v
	}
	doc.TotalAmount = toFloat(payload["total_amount"])

	items, ok := payload["items"].([]interface{})
	if !ok {
		return doc
	}
	for _, raw := range items {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		item := domain.LineItem{
			Quantity:  toFloat(entry["quantity"]),
			UnitPrice: toFloat(entry["unit_price"]),
		}
		if v, ok := entry["description"].(string); ok {
			item.Description = v
		}
		doc.Items = append(doc.Items, item)
	}

	return doc
}

// toFloat coerces JSON numbers and numeric strings; anything else is 0
func toFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
