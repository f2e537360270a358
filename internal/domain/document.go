package domain

// Document type labels assigned by the extraction layer
const (
	DocTypeInvoice       = "Invoice"
	DocTypePurchaseOrder = "Purchase Order"
	DocTypeGeneric       = "Document"
)

// Mismatch categories reported by the reconciliation engine
const (
	CategoryVendorMismatch      = "Vendor Mismatch"
	CategoryTotalPriceVariance  = "Total Price Variance"
	CategoryLineItemDiscrepancy = "Line Item Discrepancy"
)

// Reconciliation verdict statuses
const (
	StatusApproved    = "APPROVED"
	StatusNeedsReview = "NEEDS REVIEW"
)

// LineItem is a single billed or ordered line on a document
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// StructuredDocument is the structured record extracted from one file.
// Fields the extractor could not recover default to zero values.
type StructuredDocument struct {
	DocumentType string     `json:"document_type"`
	DocumentID   string     `json:"document_id"`
	VendorName   string     `json:"vendor_name"`
	TotalAmount  float64    `json:"total_amount"`
	Items        []LineItem `json:"items"`
}

// ReconciliationResult is the verdict for one invoice/PO pair.
// Details are appended in check order: vendor, total, per-item, missing
// items, final note. JSON keys match the original frontend contract.
type ReconciliationResult struct {
	IsMatch            bool                `json:"isMatch"`
	Status             string              `json:"status"`
	Summary            string              `json:"summary"`
	Details            []string            `json:"details"`
	MismatchCategories []string            `json:"mismatch_categories"`
	InvoiceData        *StructuredDocument `json:"invoice_data"`
	POData             *StructuredDocument `json:"po_data"`
}

// PreviewResult is the fast single-document extraction response
type PreviewResult struct {
	DocumentID string `json:"document_id"`
	VendorName string `json:"vendor_name"`
}
