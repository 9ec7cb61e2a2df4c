// Package promotion resolves promotional device credits.
//
// When several promotions match a device, the most specific one wins: the
// offer constraining more eligibility predicates (new customer, origin
// carrier, device category, device model) outranks a broader one. Ties go
// to the larger credit, then to the lower promotion ID.
package promotion

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
)

// Credit is a resolved promotional credit for one device
type Credit struct {
	// PromotionID is the winning promotion
	PromotionID string `json:"promotion_id"`

	// Offered is the promotion's advertised credit
	Offered decimal.Decimal `json:"offered"`

	// Amount is the credit actually applied, capped at the financed balance
	Amount decimal.Decimal `json:"amount"`

	// TermMonths is the financing term the credit is amortized over
	TermMonths int `json:"term_months"`
}

// Monthly returns the credit's share of each installment
func (c Credit) Monthly() decimal.Decimal {
	if c.TermMonths <= 0 {
		return decimal.Zero
	}
	return c.Amount.Div(decimal.NewFromInt(int64(c.TermMonths)))
}

// Capped reports whether the applied credit is less than the offer
func (c Credit) Capped() bool {
	return c.Amount.LessThan(c.Offered)
}

// Resolver picks the promotion that applies to a financed device
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// ResolveCredit returns the credit for sel, or false when none applies.
// Owned devices, devices that are not financed and accessory devices never
// receive credit. The credit is capped at retail minus trade-in so it can
// never outlast the financed balance.
func (r *Resolver) ResolveCredit(c *catalog.Catalog, customer types.CustomerContext, sel *types.DeviceSelection) (Credit, bool, error) {
	if sel == nil || !sel.IsFinanced() {
		return Credit{}, false, nil
	}

	device, err := c.Device(sel.ModelID)
	if err != nil {
		return Credit{}, false, err
	}
	if device.Category.IsAccessory() {
		return Credit{}, false, nil
	}

	candidates := r.Eligible(c, customer, device)
	if len(candidates) == 0 {
		return Credit{}, false, nil
	}
	best := candidates[0]

	retail, err := c.RetailPrice(sel.ModelID, sel.StorageGB)
	if err != nil {
		return Credit{}, false, err
	}
	balance := decimal.Max(decimal.Zero, retail.Sub(sel.TradeInValue))

	credit := Credit{
		PromotionID: best.ID,
		Offered:     best.CreditAmount,
		Amount:      decimal.Min(best.CreditAmount, balance),
		TermMonths:  sel.FinancingTermMonths,
	}

	if credit.Capped() {
		r.logger.Debug("promotion credit capped at financed balance",
			zap.String("promotion_id", best.ID),
			zap.String("offered", credit.Offered.String()),
			zap.String("applied", credit.Amount.String()),
		)
	}
	if best.CreditTermMonths > 0 && best.CreditTermMonths != sel.FinancingTermMonths {
		r.logger.Debug("promotion credit amortized over financing term",
			zap.String("promotion_id", best.ID),
			zap.Int("credit_term_months", best.CreditTermMonths),
			zap.Int("financing_term_months", sel.FinancingTermMonths),
		)
	}

	return credit, credit.Amount.IsPositive(), nil
}

// Eligible returns every promotion the customer and device qualify for,
// best first.
func (r *Resolver) Eligible(c *catalog.Catalog, customer types.CustomerContext, device *catalog.Device) []catalog.Promotion {
	carrier := normalizeCarrier(customer.OriginCarrier)

	eligible := lo.Filter(c.Promotions(), func(p catalog.Promotion, _ int) bool {
		if p.RequireNewCustomer && !customer.IsNewCustomer {
			return false
		}
		if len(p.OriginCarriers) > 0 {
			if carrier == "" {
				return false
			}
			if !lo.ContainsBy(p.OriginCarriers, func(oc string) bool { return normalizeCarrier(oc) == carrier }) {
				return false
			}
		}
		return p.AppliesToDevice(device)
	})

	determinism.SortSlice(eligible, outranks)
	return eligible
}

// outranks orders promotions: more specific, then larger credit, then ID
func outranks(a, b catalog.Promotion) bool {
	if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
		return sa > sb
	}
	if !a.CreditAmount.Equal(b.CreditAmount) {
		return a.CreditAmount.GreaterThan(b.CreditAmount)
	}
	return a.ID < b.ID
}

func normalizeCarrier(carrier string) string {
	return strings.ToLower(strings.TrimSpace(carrier))
}
