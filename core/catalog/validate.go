// Package catalog - Catalog invariants
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

var one = decimal.NewFromInt(1)

// Validate checks every table invariant and returns a CONFIG_ERROR listing
// all violations. Build calls it before sealing.
func Validate(c *Catalog) error {
	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.version == "" {
		report("catalog version is required")
	}
	if len(c.plans) == 0 {
		report("catalog has no plans")
	}

	for _, id := range determinism.SortedKeys(c.plans) {
		validatePlan(c.plans[id], report)
	}
	for _, id := range determinism.SortedKeys(c.devices) {
		validateDevice(c.devices[id], report)
	}
	validateTiers(c.tiers, report)
	for _, id := range determinism.SortedKeys(c.jurisdictions) {
		validateJurisdiction(c.jurisdictions[id], report)
	}
	for i := range c.promotions {
		validatePromotion(c, &c.promotions[i], report)
	}

	if len(problems) > 0 {
		return ierr.Config("invalid catalog %q: %s", c.version, strings.Join(problems, "; ")).
			WithContext("violations", problems)
	}
	return nil
}

func validatePlan(p *Plan, report func(string, ...interface{})) {
	if p.ID == "" {
		report("plan with empty id")
		return
	}

	// Rows are sorted non-autopay first, then by MinLines.
	var schedules [2][]RateRow
	for _, row := range p.Rates {
		if row.PerLine.IsNegative() {
			report("plan %s: negative rate at %d lines", p.ID, row.MinLines)
		}
		if row.MaxLines != 0 && row.MaxLines < row.MinLines {
			report("plan %s: rate row %d-%d is inverted", p.ID, row.MinLines, row.MaxLines)
		}
		if row.Autopay {
			schedules[1] = append(schedules[1], row)
		} else {
			schedules[0] = append(schedules[0], row)
		}
	}

	for i, rows := range schedules {
		autopay := i == 1
		if len(rows) == 0 {
			report("plan %s: no rates for autopay=%t", p.ID, autopay)
			continue
		}
		if rows[0].MinLines != 1 {
			report("plan %s autopay=%t: rates must start at 1 line", p.ID, autopay)
		}
		for j := 1; j < len(rows); j++ {
			prev, cur := rows[j-1], rows[j]
			if prev.MaxLines == 0 || cur.MinLines != prev.MaxLines+1 {
				report("plan %s autopay=%t: rate rows overlap or leave a gap at %d lines", p.ID, autopay, cur.MinLines)
			}
			if cur.PerLine.GreaterThan(prev.PerLine) {
				report("plan %s autopay=%t: rate increases from %s to %s at %d lines",
					p.ID, autopay, prev.PerLine, cur.PerLine, cur.MinLines)
			}
		}
		if rows[len(rows)-1].MaxLines != 0 {
			report("plan %s autopay=%t: last rate row must be open-ended", p.ID, autopay)
		}
	}

	// Autopay never costs more: compare at every breakpoint of either schedule.
	if len(schedules[0]) > 0 && len(schedules[1]) > 0 {
		for _, rows := range schedules {
			for _, row := range rows {
				n := row.MinLines
				manual, okManual := rateAt(schedules[0], n)
				auto, okAuto := rateAt(schedules[1], n)
				if okManual && okAuto && auto.GreaterThan(manual) {
					report("plan %s: autopay rate %s exceeds manual rate %s at %d lines", p.ID, auto, manual, n)
				}
			}
		}
	}

	for _, kind := range determinism.SortedKeys(p.AccessoryRates) {
		if !kind.IsAccessory() {
			report("plan %s: accessory rate for non-accessory kind", p.ID)
		}
		if p.AccessoryRates[kind].IsNegative() {
			report("plan %s: negative accessory rate for %s", p.ID, kind)
		}
	}
}

func rateAt(rows []RateRow, lineCount int) (decimal.Decimal, bool) {
	for _, row := range rows {
		if row.Covers(lineCount) {
			return row.PerLine, true
		}
	}
	return decimal.Zero, false
}

func validateDevice(d *Device, report func(string, ...interface{})) {
	switch d.Category {
	case CategoryPhone, CategoryWatch, CategoryTablet, CategoryWearable:
	default:
		report("device %s: unknown category %q", d.ModelID, d.Category)
	}
	if len(d.Variants) == 0 {
		report("device %s: no variants", d.ModelID)
		return
	}
	seen := make(map[int]bool, len(d.Variants))
	for _, v := range d.Variants {
		if seen[v.StorageGB] {
			report("device %s: duplicate %dGB variant", d.ModelID, v.StorageGB)
		}
		seen[v.StorageGB] = true
		if v.RetailPrice.IsNegative() {
			report("device %s: negative price for %dGB", d.ModelID, v.StorageGB)
		}
	}
}

func validateTiers(tiers []InsuranceTier, report func(string, ...interface{})) {
	if len(tiers) == 0 {
		report("no insurance tiers")
		return
	}
	if !tiers[0].Min.IsZero() {
		report("insurance tiers must start at 0, first band starts at %s", tiers[0].Min)
	}
	for i, t := range tiers {
		if t.Premium.IsNegative() {
			report("insurance tier %s: negative premium", t.ID)
		}
		last := i == len(tiers)-1
		if t.Max == nil {
			if !last {
				report("insurance tier %s: only the last band may be open-ended", t.ID)
			}
			continue
		}
		if !t.Max.GreaterThan(t.Min) {
			report("insurance tier %s: empty band [%s, %s)", t.ID, t.Min, *t.Max)
		}
		if last {
			report("insurance tier %s: last band must be open-ended", t.ID)
			continue
		}
		if !t.Max.Equal(tiers[i+1].Min) {
			report("insurance tiers %s and %s are not contiguous", t.ID, tiers[i+1].ID)
		}
	}
}

func validateJurisdiction(j *Jurisdiction, report func(string, ...interface{})) {
	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"service tax rate", j.ServiceTaxRate},
		{"device sales tax rate", j.DeviceSalesTaxRate},
	}
	for _, r := range rates {
		if r.value.IsNegative() || r.value.GreaterThanOrEqual(one) {
			report("jurisdiction %s: %s %s outside [0, 1)", j.ID, r.name, r.value)
		}
	}
	fees := []struct {
		name  string
		value decimal.Decimal
	}{
		{"regulatory fee", j.PerLineRegulatoryFee},
		{"federal surcharge", j.PerLineFederalSurcharge},
		{"activation fee", j.PerDeviceActivationFee},
	}
	for _, f := range fees {
		if f.value.IsNegative() {
			report("jurisdiction %s: negative %s", j.ID, f.name)
		}
	}
}

func validatePromotion(c *Catalog, p *Promotion, report func(string, ...interface{})) {
	if !p.CreditAmount.IsPositive() {
		report("promotion %s: credit must be positive", p.ID)
	}
	if p.CreditTermMonths < 0 {
		report("promotion %s: negative credit term", p.ID)
	}
	for _, m := range p.DeviceModels {
		if _, ok := c.devices[m]; !ok {
			report("promotion %s: unknown device %s", p.ID, m)
		}
	}
	for _, id := range determinism.SortedKeys(c.devices) {
		d := c.devices[id]
		if !p.AppliesToDevice(d) {
			continue
		}
		if d.Category.IsAccessory() {
			continue
		}
		for _, v := range d.Variants {
			if p.CreditAmount.GreaterThan(v.RetailPrice) {
				report("promotion %s: credit %s exceeds %s %dGB price %s",
					p.ID, p.CreditAmount, d.ModelID, v.StorageGB, v.RetailPrice)
			}
		}
	}
}

// LineKindFor maps a device category to the line kind it rides on
func LineKindFor(c DeviceCategory) types.AccessoryKind {
	switch c {
	case CategoryWatch:
		return types.AccessoryWatch
	case CategoryTablet:
		return types.AccessoryTablet
	case CategoryWearable:
		return types.AccessoryWearable
	default:
		return types.AccessoryNone
	}
}
