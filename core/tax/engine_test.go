package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireless-quote/core/catalog"
	"wireless-quote/core/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func metro(t *testing.T) *catalog.Jurisdiction {
	t.Helper()
	j, err := catalog.Default().TaxSchedule(catalog.JurisdictionMetro)
	require.NoError(t, err)
	return j
}

func scenarioItems() []types.LineItem {
	items := []types.LineItem{
		{Kind: types.KindPlan, Amount: dec("200.01"), Recurring: true},
	}
	for i := 1; i <= 3; i++ {
		items = append(items,
			types.LineItem{Kind: types.KindFinancing, Amount: dec("16.625"), Recurring: true, LineIndex: i, Credit: dec("800")},
			types.LineItem{Kind: types.KindInsurance, Amount: dec("25"), Recurring: true, LineIndex: i},
		)
	}
	return items
}

func scenarioDevices(retail string) []types.ActivatedDevice {
	var out []types.ActivatedDevice
	for i := 1; i <= 3; i++ {
		out = append(out, types.ActivatedDevice{LineIndex: i, ModelID: "iphone-17-pro-max", RetailPrice: dec(retail), Sold: true})
	}
	return out
}

func sumKind(items []types.LineItem, kind types.ItemKind) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		if i.Kind == kind {
			total = total.Add(i.Amount)
		}
	}
	return total
}

func TestApplyTaxesScenarioA(t *testing.T) {
	items := scenarioItems()
	out := New(nil).ApplyTaxes(items, metro(t), 3, scenarioDevices("1199"), Options{AccessoryTaxInclusive: true})

	assert.Len(t, items, 7, "input must not grow")
	assert.Len(t, out, 7+3+3+1)

	assert.True(t, sumKind(out, types.KindServiceTax).Equal(dec("39.711444")), "service tax %s", sumKind(out, types.KindServiceTax))
	assert.True(t, sumKind(out, types.KindRegulatoryFee).Equal(dec("11.97")))
	assert.True(t, sumKind(out, types.KindSurcharge).Equal(dec("7.5")))
	assert.True(t, sumKind(out, types.KindDeviceTax).Equal(dec("251.79")))
	assert.True(t, sumKind(out, types.KindActivationFee).Equal(dec("105")))

	for _, i := range out {
		switch i.Kind {
		case types.KindDeviceTax, types.KindActivationFee:
			assert.False(t, i.Recurring, i.Kind.String())
		default:
			assert.True(t, i.Recurring, i.Kind.String())
		}
	}
}

func TestServiceBaseExcludesFinancingAndTaxes(t *testing.T) {
	items := append(scenarioItems(),
		types.LineItem{Kind: types.KindServiceTax, Amount: dec("100"), Recurring: true},
		types.LineItem{Kind: types.KindRegulatoryFee, Amount: dec("100"), Recurring: true},
		types.LineItem{Kind: types.KindDeviceTax, Amount: dec("100")},
	)
	assert.True(t, ServiceBase(items, Options{}).Equal(dec("275.01")))
}

func TestServiceBaseAccessoryTreatment(t *testing.T) {
	items := append(scenarioItems(),
		types.LineItem{Kind: types.KindAccessoryLine, Amount: dec("5"), Recurring: true, LineIndex: 4},
		types.LineItem{Kind: types.KindAccessoryLine, Amount: dec("5"), Recurring: true, LineIndex: 5},
	)
	assert.True(t, ServiceBase(items, Options{AccessoryTaxInclusive: true}).Equal(dec("275.01")))
	assert.True(t, ServiceBase(items, Options{AccessoryTaxInclusive: false}).Equal(dec("285.01")))
}

func TestDeviceTaxIgnoresCredit(t *testing.T) {
	j := metro(t)
	devices := scenarioDevices("1199")

	withCredit := New(nil).ApplyTaxes(scenarioItems(), j, 3, devices, Options{})

	noCredit := scenarioItems()
	for i := range noCredit {
		if noCredit[i].Kind == types.KindFinancing {
			noCredit[i].Amount = dec("49.958333")
			noCredit[i].Credit = decimal.Zero
		}
	}
	withoutCredit := New(nil).ApplyTaxes(noCredit, j, 3, devices, Options{})

	assert.True(t, sumKind(withCredit, types.KindDeviceTax).Equal(sumKind(withoutCredit, types.KindDeviceTax)))
	assert.True(t, sumKind(withCredit, types.KindServiceTax).Equal(sumKind(withoutCredit, types.KindServiceTax)))
}

func TestOwnedAndFreeDevicesSkipDeviceTaxButActivate(t *testing.T) {
	devices := []types.ActivatedDevice{
		{LineIndex: 1, ModelID: "pixel-10-pro", RetailPrice: dec("999"), Sold: false},
		{LineIndex: 2, ModelID: "watch-byod", RetailPrice: decimal.Zero, Sold: true},
		{LineIndex: 3, ModelID: "ipad-air-13", RetailPrice: dec("799"), Sold: true},
	}
	require.Len(t, Taxable(devices), 1)

	out := New(nil).ApplyTaxes(nil, metro(t), 1, devices, Options{})
	assert.True(t, sumKind(out, types.KindDeviceTax).Equal(dec("55.93")))
	assert.True(t, sumKind(out, types.KindActivationFee).Equal(dec("105")))
}

func TestNoDevicesNoActivation(t *testing.T) {
	out := New(nil).ApplyTaxes(scenarioItems(), metro(t), 3, nil, Options{})
	for _, i := range out {
		assert.NotEqual(t, types.KindActivationFee, i.Kind)
		assert.NotEqual(t, types.KindDeviceTax, i.Kind)
	}
}

func TestOptionsFor(t *testing.T) {
	c := catalog.Default()
	more, err := c.Plan(catalog.PlanExperienceMore)
	require.NoError(t, err)
	essentials, err := c.Plan(catalog.PlanEssentials)
	require.NoError(t, err)

	assert.True(t, OptionsFor(more).AccessoryTaxInclusive)
	assert.False(t, OptionsFor(essentials).AccessoryTaxInclusive)
	assert.Equal(t, Options{}, OptionsFor(nil))
}
