// Package totalizer sums line items into the published quote totals.
// Totals are computed from the exact item list returned to the caller.
// Installments enter the monthly total through their principals, so no
// per-line quotient is ever accumulated.
package totalizer

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
)

// FirstMonthDescription labels the first month of service billed at signing
const FirstMonthDescription = "First month of service, due at signing"

// Totalize computes TotalMonthly and TotalUpfront and appends the
// first-month item. items is not modified; any first-month item already in
// it is dropped and recomputed.
func Totalize(items []types.LineItem) *types.ItemizedQuote {
	kept := lo.Reject(items, func(i types.LineItem, _ int) bool { return i.Kind == types.KindFirstMonth })

	recurring, oneTime := lo.FilterReject(kept, func(i types.LineItem, _ int) bool { return i.Recurring })
	monthly := Monthly(recurring)
	oneTimeSubtotal := sum(oneTime)

	out := make([]types.LineItem, 0, len(kept)+1)
	out = append(out, kept...)
	out = append(out, types.LineItem{
		Kind:        types.KindFirstMonth,
		Description: FirstMonthDescription,
		Amount:      monthly,
	})

	return &types.ItemizedQuote{
		Items:           out,
		TotalMonthly:    monthly,
		OneTimeSubtotal: oneTimeSubtotal,
		TotalUpfront:    oneTimeSubtotal.Add(monthly),
	}
}

// Check recomputes the totals from q.Items and reports whether they match
func Check(q *types.ItemizedQuote) bool {
	monthly := Monthly(q.Recurring())
	upfront := sum(q.OneTime())
	firstMonth := q.SumOfKind(types.KindFirstMonth)
	return monthly.Equal(q.TotalMonthly) &&
		firstMonth.Equal(q.TotalMonthly) &&
		upfront.Equal(q.TotalUpfront) &&
		upfront.Sub(firstMonth).Equal(q.OneTimeSubtotal)
}

// Monthly sums recurring items. Installment principals are scaled to the
// least common multiple of their terms and divided once, which keeps a
// total that lands on a half cent exact until display rounding.
func Monthly(items []types.LineItem) decimal.Decimal {
	installments, rest := lo.FilterReject(items, func(i types.LineItem, _ int) bool { return i.IsInstallment() })
	total := sum(rest)
	if len(installments) == 0 {
		return total
	}

	denom := lo.Reduce(installments, func(acc int64, i types.LineItem, _ int) int64 {
		return lcm(acc, int64(i.TermMonths))
	}, int64(1))
	numerator := determinism.Sum(lo.Map(installments, func(i types.LineItem, _ int) decimal.Decimal {
		return i.Principal.Mul(decimal.NewFromInt(denom / int64(i.TermMonths)))
	})...)
	return total.Add(numerator.Div(decimal.NewFromInt(denom)))
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sum(items []types.LineItem) decimal.Decimal {
	return determinism.Sum(lo.Map(items, func(i types.LineItem, _ int) decimal.Decimal { return i.Amount })...)
}
