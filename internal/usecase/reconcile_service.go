package usecase

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/docmatch/backend/internal/domain"
)

// amountTolerance absorbs currency rounding on totals and unit prices.
// Quantities are compared exactly.
const amountTolerance = 0.01

// ReconcileService compares an extracted invoice against an extracted
// purchase order and produces the match verdict
type ReconcileService struct {
	matcher *ItemMatcher
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService() *ReconcileService {
	return &ReconcileService{matcher: NewItemMatcher()}
}

// Reconcile runs the two-way match. Checks run in fixed order (vendor,
// total, line items, summary), each appending detail lines as it goes.
// Pure: identical inputs always produce an identical result.
func (s *ReconcileService) Reconcile(invoice, po *domain.StructuredDocument) *domain.ReconciliationResult {
	result := &domain.ReconciliationResult{
		IsMatch:            true,
		Status:             domain.StatusApproved,
		Summary:            "Perfect 2-Way Match! Vendor and Total Amount verified.",
		Details:            []string{},
		MismatchCategories: []string{},
		InvoiceData:        invoice,
		POData:             po,
	}

	// 1. Vendor name check
	if NormalizeText(invoice.VendorName) != NormalizeText(po.VendorName) {
		result.IsMatch = false
		result.MismatchCategories = append(result.MismatchCategories, domain.CategoryVendorMismatch)
		result.Details = append(result.Details,
			fmt.Sprintf("Vendor Mismatch: Invoice: '%s' vs. PO: '%s'", invoice.VendorName, po.VendorName))
	} else {
		result.Details = append(result.Details, fmt.Sprintf("Vendor Match: %s", invoice.VendorName))
	}

	// 2. Total amount check
	if math.Abs(invoice.TotalAmount-po.TotalAmount) > amountTolerance {
		result.IsMatch = false
		result.MismatchCategories = append(result.MismatchCategories, domain.CategoryTotalPriceVariance)
		difference := math.Round(math.Abs(invoice.TotalAmount-po.TotalAmount)*100) / 100
		result.Details = append(result.Details,
			fmt.Sprintf("Total Amount Mismatch: Invoice: $%.2f vs. PO: $%.2f. Difference: $%.2f",
				invoice.TotalAmount, po.TotalAmount, difference))
	} else {
		result.Details = append(result.Details, fmt.Sprintf("Total Amount Match: $%.2f", invoice.TotalAmount))
	}

	// 3. Line-item verification. PO items form a shrinking candidate pool so
	// each ordered item can satisfy at most one billed item.
	poRemaining := make([]domain.LineItem, len(po.Items))
	copy(poRemaining, po.Items)

	lineItemMismatch := false
	for _, invItem := range invoice.Items {
		idx := s.matcher.FindBestMatch(invItem, poRemaining)
		if idx < 0 {
			result.IsMatch = false
			lineItemMismatch = true
			result.Details = append(result.Details,
				fmt.Sprintf("❌ UNMATCHED ITEM: Invoice item '%s' not found on PO.", invItem.Description))
			continue
		}

		poItem := poRemaining[idx]

		if math.Abs(invItem.Quantity-poItem.Quantity) > 0 {
			result.IsMatch = false
			lineItemMismatch = true
			result.Details = append(result.Details,
				fmt.Sprintf("⚠️ QTY MISMATCH for Item '%s': Invoice Qty (%s) != PO Qty (%s)",
					invItem.Description, formatQuantity(invItem.Quantity), formatQuantity(poItem.Quantity)))
		}

		if math.Abs(invItem.UnitPrice-poItem.UnitPrice) > amountTolerance {
			result.IsMatch = false
			lineItemMismatch = true
			result.Details = append(result.Details,
				fmt.Sprintf("⚠️ PRICE MISMATCH for Item '%s': Invoice Price ($%.2f) != PO Price ($%.2f)",
					invItem.Description, invItem.UnitPrice, poItem.UnitPrice))
		}

		poRemaining = append(poRemaining[:idx], poRemaining[idx+1:]...)
	}

	// Items ordered on the PO but never billed
	if len(poRemaining) > 0 {
		result.IsMatch = false
		lineItemMismatch = true
		result.Details = append(result.Details,
			fmt.Sprintf("❌ MISSING ITEMS: %d item(s) ordered on PO but not found on Invoice.", len(poRemaining)))
	}

	if lineItemMismatch {
		result.MismatchCategories = append(result.MismatchCategories, domain.CategoryLineItemDiscrepancy)
	} else {
		result.Details = append(result.Details, "✓ All Line Items Verified.")
	}

	// 4. Summary synthesis
	if !result.IsMatch {
		result.Status = domain.StatusNeedsReview
		categories := strings.Join(sortedUnique(result.MismatchCategories), ", ")
		result.Summary = fmt.Sprintf(
			"⚠️ CRITICAL DISCREPANCY: Review required due to %s. Please check the Verification Details below.",
			categories)
	} else {
		result.Summary = "Perfect 2-Way Match! All key fields and line items verified and approved for payment processing."
	}

	return result
}

// sortedUnique returns the distinct values in sorted order
func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// formatQuantity renders whole quantities without a decimal point, matching
// how counts appear on the source documents
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
