package gemini

import (
	"context"
	"time"

	"github.com/docmatch/backend/internal/domain"
)

// MockClient returns canned documents so the service can run end-to-end
// without a configured API key (local demo mode).
type MockClient struct{}

// NewMockClient creates the canned extraction client
func NewMockClient() *MockClient {
	return &MockClient{}
}

// ExtractDocument returns a fixed document for the requested type. The
// short delay lets status pollers observe the processing state.
func (m *MockClient) ExtractDocument(ctx context.Context, rawText, docType string) (*domain.StructuredDocument, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}

	docID := "INV-2024-001"
	if docType == domain.DocTypePurchaseOrder {
		docID = "PO-2024-001"
	}

	return &domain.StructuredDocument{
		DocumentType: docType,
		DocumentID:   docID,
		VendorName:   "TechSupply Co.",
		TotalAmount:  1295.00,
		Items: []domain.LineItem{
			{Description: "Laptop", Quantity: 1, UnitPrice: 1200.00},
		},
	}, nil
}
