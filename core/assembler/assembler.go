// Package assembler converts a quote request into typed line items.
// The plan charge is one aggregated item, never one item per line. Item
// amounts are exact; nothing here rounds.
package assembler

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/determinism"
	"wireless-quote/core/guards"
	"wireless-quote/core/promotion"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
	"wireless-quote/internal/validator"
)

// Assembly is the assembler's output
type Assembly struct {
	// Items are plan, per-line device items, then accessory lines
	Items []types.LineItem

	// VoiceLines is the plan line count
	VoiceLines int

	// Devices lists every line with a physical device, in line order
	Devices []types.ActivatedDevice

	// Plan is the resolved plan
	Plan *catalog.Plan
}

// Assembler builds line items from a request
type Assembler struct {
	promotions *promotion.Resolver
	logger     *zap.Logger
}

// New creates an assembler
func New(promotions *promotion.Resolver, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if promotions == nil {
		promotions = promotion.NewResolver(logger)
	}
	return &Assembler{promotions: promotions, logger: logger}
}

// Assemble validates req and emits its service and device items. guard
// decides what happens when trade-in and credit exceed a device's price.
func (a *Assembler) Assemble(c *catalog.Catalog, req *types.QuoteRequest, guard *guards.OverflowGuard) (*Assembly, error) {
	if req == nil {
		return nil, ierr.InvalidRequest("quote request is required")
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := CheckLines(req); err != nil {
		return nil, err
	}

	plan, err := c.Plan(req.PlanID)
	if err != nil {
		return nil, err
	}

	voice := sortedByIndex(req.Lines)
	accessories := sortedByIndex(req.Accessories)

	out := &Assembly{
		VoiceLines: len(voice),
		Plan:       plan,
	}

	planItem, err := a.planItem(c, plan, len(voice), req.Autopay)
	if err != nil {
		return nil, err
	}
	out.Items = append(out.Items, planItem)

	for _, line := range voice {
		items, dev, err := a.voiceLine(c, req.Customer, line, guard)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, items...)
		out.Devices = append(out.Devices, dev)
	}

	for _, line := range accessories {
		item, dev, err := a.accessoryLine(c, plan, line)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
		if dev != nil {
			out.Devices = append(out.Devices, *dev)
		}
	}

	// Devices are reported in line order regardless of line kind.
	determinism.SortSlice(out.Devices, func(x, y types.ActivatedDevice) bool { return x.LineIndex < y.LineIndex })

	a.logger.Debug("request assembled",
		zap.String("plan_id", plan.ID),
		zap.Int("voice_lines", out.VoiceLines),
		zap.Int("accessory_lines", len(accessories)),
		zap.Int("devices", len(out.Devices)),
		zap.Int("items", len(out.Items)),
	)
	return out, nil
}

// planItem prices every voice line at the multi-line rate in one item
func (a *Assembler) planItem(c *catalog.Catalog, plan *catalog.Plan, lineCount int, autopay bool) (types.LineItem, error) {
	rate, err := c.RatePerLine(plan.ID, lineCount, autopay)
	if err != nil {
		return types.LineItem{}, err
	}
	desc := fmt.Sprintf("%s, %d lines x %s", planName(plan), lineCount, determinism.FormatMoney(rate))
	if autopay {
		desc += " (autopay)"
	}
	return types.LineItem{
		Kind:        types.KindPlan,
		Description: desc,
		Amount:      rate.Mul(decimal.NewFromInt(int64(lineCount))),
		Recurring:   true,
	}, nil
}

func (a *Assembler) voiceLine(c *catalog.Catalog, customer types.CustomerContext, line types.Line, guard *guards.OverflowGuard) ([]types.LineItem, types.ActivatedDevice, error) {
	sel := line.Device
	device, err := c.Device(sel.ModelID)
	if err != nil {
		return nil, types.ActivatedDevice{}, err
	}
	if device.Category != catalog.CategoryPhone {
		return nil, types.ActivatedDevice{}, ierr.InvalidRequest("line %d: %s is a %s, voice lines need a phone",
			line.Index, device.ModelID, device.Category)
	}
	retail, err := c.RetailPrice(sel.ModelID, sel.StorageGB)
	if err != nil {
		return nil, types.ActivatedDevice{}, err
	}

	var items []types.LineItem

	if sel.IsFinanced() {
		credit, _, err := a.promotions.ResolveCredit(c, customer, sel)
		if err != nil {
			return nil, types.ActivatedDevice{}, err
		}
		principal, err := guard.Principal(line.Index, sel.ModelID, retail, sel.TradeInValue, credit.Amount)
		if err != nil {
			return nil, types.ActivatedDevice{}, err
		}
		term := decimal.NewFromInt(int64(sel.FinancingTermMonths))
		items = append(items, types.LineItem{
			Kind:        types.KindFinancing,
			Description: fmt.Sprintf("%s, %d-month installment", deviceName(device), sel.FinancingTermMonths),
			Amount:      principal.Div(term),
			Recurring:   true,
			LineIndex:   line.Index,
			PromotionID: credit.PromotionID,
			Credit:      credit.Amount,
			Principal:   &principal,
			TermMonths:  sel.FinancingTermMonths,
		})
	}

	if line.Insured {
		premium, err := c.TierPremium(retail)
		if err != nil {
			return nil, types.ActivatedDevice{}, err
		}
		items = append(items, types.LineItem{
			Kind:        types.KindInsurance,
			Description: fmt.Sprintf("Device protection, %s", deviceName(device)),
			Amount:      premium,
			Recurring:   true,
			LineIndex:   line.Index,
		})
	}

	return items, types.ActivatedDevice{
		LineIndex:   line.Index,
		ModelID:     sel.ModelID,
		RetailPrice: retail,
		Sold:        !sel.Owned,
	}, nil
}

func (a *Assembler) accessoryLine(c *catalog.Catalog, plan *catalog.Plan, line types.Line) (types.LineItem, *types.ActivatedDevice, error) {
	rate, err := c.AccessoryRate(plan.ID, line.Accessory)
	if err != nil {
		return types.LineItem{}, nil, err
	}
	item := types.LineItem{
		Kind:        types.KindAccessoryLine,
		Description: fmt.Sprintf("%s line", line.Accessory),
		Amount:      rate,
		Recurring:   true,
		LineIndex:   line.Index,
	}
	if !line.HasDevice() {
		return item, nil, nil
	}

	sel := line.Device
	device, err := c.Device(sel.ModelID)
	if err != nil {
		return types.LineItem{}, nil, err
	}
	if catalog.LineKindFor(device.Category) != line.Accessory {
		return types.LineItem{}, nil, ierr.InvalidRequest("line %d: %s is a %s and cannot ride on a %s line",
			line.Index, device.ModelID, device.Category, line.Accessory)
	}
	retail, err := c.RetailPrice(sel.ModelID, sel.StorageGB)
	if err != nil {
		return types.LineItem{}, nil, err
	}
	item.Description = fmt.Sprintf("%s line, %s", line.Accessory, deviceName(device))

	return item, &types.ActivatedDevice{
		LineIndex:   line.Index,
		ModelID:     sel.ModelID,
		RetailPrice: retail,
		Sold:        !sel.Owned,
	}, nil
}

func sortedByIndex(lines []types.Line) []types.Line {
	out := append([]types.Line(nil), lines...)
	determinism.SortSlice(out, func(x, y types.Line) bool { return x.Index < y.Index })
	return out
}

func planName(p *catalog.Plan) string {
	return lo.Ternary(p.Name != "", p.Name, p.ID)
}

func deviceName(d *catalog.Device) string {
	return lo.Ternary(d.Name != "", d.Name, d.ModelID)
}
