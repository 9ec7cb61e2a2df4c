// Package tax applies jurisdiction taxes and fees to assembled line items.
//
// Steps run in a fixed order and each step taxes only items that existed
// before it, so taxes are never taxed:
//
//  1. service base: recurring service charges, excluding financing
//  2. service tax on that base (recurring)
//  3. regulatory fee per voice line (recurring)
//  4. federal surcharge per voice line (recurring)
//  5. device tax on each sold device's full retail price (one-time)
//  6. activation fee per activated device (one-time)
package tax

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
)

// Options carries plan-level tax treatment
type Options struct {
	// AccessoryTaxInclusive keeps accessory-line items out of the service base
	AccessoryTaxInclusive bool
}

// OptionsFor derives options from a plan
func OptionsFor(p *catalog.Plan) Options {
	if p == nil {
		return Options{}
	}
	return Options{AccessoryTaxInclusive: p.AccessoryTaxInclusive}
}

// Engine applies a jurisdiction's tax and fee schedule
type Engine struct {
	logger *zap.Logger
}

// New creates a tax engine
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ApplyTaxes returns items followed by the tax and fee items. items is not
// modified. lineCount is the voice line count; devices are every activated
// physical device.
func (e *Engine) ApplyTaxes(items []types.LineItem, j *catalog.Jurisdiction, lineCount int, devices []types.ActivatedDevice, opts Options) []types.LineItem {
	out := make([]types.LineItem, 0, len(items)+5+len(devices))
	out = append(out, items...)

	base := ServiceBase(items, opts)
	lines := decimal.NewFromInt(int64(lineCount))

	out = append(out,
		types.LineItem{
			Kind:        types.KindServiceTax,
			Description: fmt.Sprintf("Service tax %s%% on %s", percent(j.ServiceTaxRate), determinism.FormatMoney(base)),
			Amount:      base.Mul(j.ServiceTaxRate),
			Recurring:   true,
		},
		types.LineItem{
			Kind:        types.KindRegulatoryFee,
			Description: fmt.Sprintf("Regulatory fee, %d lines x %s", lineCount, determinism.FormatMoney(j.PerLineRegulatoryFee)),
			Amount:      j.PerLineRegulatoryFee.Mul(lines),
			Recurring:   true,
		},
		types.LineItem{
			Kind:        types.KindSurcharge,
			Description: fmt.Sprintf("Federal surcharge, %d lines x %s", lineCount, determinism.FormatMoney(j.PerLineFederalSurcharge)),
			Amount:      j.PerLineFederalSurcharge.Mul(lines),
			Recurring:   true,
		},
	)

	for _, d := range Taxable(devices) {
		out = append(out, types.LineItem{
			Kind:        types.KindDeviceTax,
			Description: fmt.Sprintf("Sales tax %s%% on %s retail %s", percent(j.DeviceSalesTaxRate), d.ModelID, determinism.FormatMoney(d.RetailPrice)),
			Amount:      d.RetailPrice.Mul(j.DeviceSalesTaxRate),
			LineIndex:   d.LineIndex,
		})
	}

	if n := len(devices); n > 0 {
		out = append(out, types.LineItem{
			Kind:        types.KindActivationFee,
			Description: fmt.Sprintf("Activation, %d devices x %s", n, determinism.FormatMoney(j.PerDeviceActivationFee)),
			Amount:      j.PerDeviceActivationFee.Mul(decimal.NewFromInt(int64(n))),
		})
	}

	e.logger.Debug("taxes applied",
		zap.String("jurisdiction", j.ID),
		zap.String("service_base", base.String()),
		zap.Int("lines", lineCount),
		zap.Int("devices", len(devices)),
	)
	return out
}

// ServiceBase sums the recurring items subject to service tax
func ServiceBase(items []types.LineItem, opts Options) decimal.Decimal {
	taxable := lo.Filter(items, func(i types.LineItem, _ int) bool {
		if !i.Recurring {
			return false
		}
		switch i.Kind {
		case types.KindPlan, types.KindInsurance:
			return true
		case types.KindAccessoryLine:
			return !opts.AccessoryTaxInclusive
		default:
			// financing repays principal; taxes and fees are never taxed
			return false
		}
	})
	return determinism.Sum(lo.Map(taxable, func(i types.LineItem, _ int) decimal.Decimal { return i.Amount })...)
}

// Taxable returns the devices that owe sales tax: sold, with a retail price
func Taxable(devices []types.ActivatedDevice) []types.ActivatedDevice {
	return lo.Filter(devices, func(d types.ActivatedDevice, _ int) bool {
		return d.Sold && d.RetailPrice.IsPositive()
	})
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
