// Package types - Line item and quote output types
package types

import (
	"github.com/shopspring/decimal"

	"wireless-quote/core/determinism"
)

// ItemKind classifies a line item
type ItemKind string

const (
	KindPlan          ItemKind = "plan"
	KindFinancing     ItemKind = "financing"
	KindInsurance     ItemKind = "insurance"
	KindAccessoryLine ItemKind = "accessory-line"
	KindRegulatoryFee ItemKind = "regulatory-fee"
	KindSurcharge     ItemKind = "surcharge"
	KindServiceTax    ItemKind = "service-tax"
	KindDeviceTax     ItemKind = "device-tax"
	KindActivationFee ItemKind = "activation-fee"

	// KindFirstMonth is the first month of service billed at signing.
	// It duplicates the recurring total and is never itself recurring.
	KindFirstMonth ItemKind = "first-month"
)

// String returns the kind name
func (k ItemKind) String() string {
	return string(k)
}

// LineItem is a single typed monetary charge
type LineItem struct {
	// Kind classifies the charge
	Kind ItemKind `json:"kind"`

	// Description is a short human-readable label
	Description string `json:"description"`

	// Amount is exact and unrounded. Negative only for credits.
	Amount decimal.Decimal `json:"amount"`

	// Recurring is true for monthly charges, false for one-time charges
	Recurring bool `json:"recurring"`

	// LineIndex ties the item to a line; 0 for account-level items
	LineIndex int `json:"line_index,omitempty"`

	// PromotionID names the promotion folded into this item, if any
	PromotionID string `json:"promotion_id,omitempty"`

	// Credit is the promotional credit applied, informational only
	Credit decimal.Decimal `json:"credit"`

	// Principal and TermMonths are set on installments. Amount is then
	// Principal/TermMonths carried to division precision; totals are built
	// from Principal so the division happens once per quote.
	Principal  *decimal.Decimal `json:"principal,omitempty"`
	TermMonths int              `json:"term_months,omitempty"`
}

// IsInstallment reports whether the item repays a financed principal
func (i LineItem) IsInstallment() bool {
	return i.Principal != nil && i.TermMonths > 0
}

// Display returns the amount rounded for presentation
func (i LineItem) Display() decimal.Decimal {
	return determinism.RoundDisplay(i.Amount)
}

// ItemizedQuote is the immutable result of pricing one request
type ItemizedQuote struct {
	// ID is derived from the catalog hash and the request, so identical
	// requests against the same catalog share an ID
	ID string `json:"id"`

	// CatalogVersion is the version label of the catalog used
	CatalogVersion string `json:"catalog_version"`

	// CatalogHash is the content hash of the catalog used
	CatalogHash string `json:"catalog_hash"`

	// Items are in computation order
	Items []LineItem `json:"items"`

	// TotalMonthly is the sum of all recurring items, with installments
	// divided once over their exact principals
	TotalMonthly decimal.Decimal `json:"total_monthly"`

	// OneTimeSubtotal is the sum of one-time items excluding the first month
	OneTimeSubtotal decimal.Decimal `json:"one_time_subtotal"`

	// TotalUpfront is OneTimeSubtotal plus TotalMonthly
	TotalUpfront decimal.Decimal `json:"total_upfront"`

	// Warnings lists amounts clamped in permissive mode
	Warnings []string `json:"warnings,omitempty"`
}

// Recurring returns the recurring items in order
func (q *ItemizedQuote) Recurring() []LineItem {
	return q.filter(func(i LineItem) bool { return i.Recurring })
}

// OneTime returns the one-time items in order, including the first month
func (q *ItemizedQuote) OneTime() []LineItem {
	return q.filter(func(i LineItem) bool { return !i.Recurring })
}

// ItemsOfKind returns all items of the given kind in order
func (q *ItemizedQuote) ItemsOfKind(kind ItemKind) []LineItem {
	return q.filter(func(i LineItem) bool { return i.Kind == kind })
}

// SumOfKind adds the exact amounts of all items of the given kind
func (q *ItemizedQuote) SumOfKind(kind ItemKind) decimal.Decimal {
	total := decimal.Zero
	for _, i := range q.ItemsOfKind(kind) {
		total = total.Add(i.Amount)
	}
	return total
}

// DisplayMonthly is TotalMonthly rounded once for presentation
func (q *ItemizedQuote) DisplayMonthly() decimal.Decimal {
	return determinism.RoundDisplay(q.TotalMonthly)
}

// DisplayUpfront is TotalUpfront rounded once for presentation
func (q *ItemizedQuote) DisplayUpfront() decimal.Decimal {
	return determinism.RoundDisplay(q.TotalUpfront)
}

func (q *ItemizedQuote) filter(keep func(LineItem) bool) []LineItem {
	var out []LineItem
	for _, i := range q.Items {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}
