package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireless-quote/core/catalog"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

func financed(model string) *types.DeviceSelection {
	return &types.DeviceSelection{ModelID: model, FinancingTermMonths: 24}
}

func TestResolveCredit(t *testing.T) {
	c := catalog.Default()
	r := NewResolver(nil)

	tests := []struct {
		name     string
		customer types.CustomerContext
		device   *types.DeviceSelection
		wantID   string
		want     string
	}{
		{
			name:     "new customer gets flagship credit",
			customer: types.CustomerContext{IsNewCustomer: true},
			device:   financed("iphone-17-pro-max"),
			wantID:   catalog.PromoNewCustomer,
			want:     "800",
		},
		{
			name:     "carrier named offer outranks generic new customer offer",
			customer: types.CustomerContext{IsNewCustomer: true, OriginCarrier: " Verizon "},
			device:   financed("iphone-17-pro-max"),
			wantID:   catalog.PromoKeepAndSwitch,
			want:     "1000",
		},
		{
			name:     "unlisted carrier falls back to generic offer",
			customer: types.CustomerContext{IsNewCustomer: true, OriginCarrier: "mint"},
			device:   financed("iphone-17-pro-max"),
			wantID:   catalog.PromoNewCustomer,
			want:     "800",
		},
		{
			name:     "existing customer gets loyalty credit",
			customer: types.CustomerContext{},
			device:   financed("galaxy-s25-ultra"),
			wantID:   catalog.PromoLoyalty,
			want:     "300",
		},
		{
			name:     "more specific new customer offer beats loyalty",
			customer: types.CustomerContext{IsNewCustomer: true},
			device:   financed("galaxy-s25-ultra"),
			wantID:   catalog.PromoNewCustomer,
			want:     "800",
		},
		{
			name:     "credit capped at retail minus trade-in",
			customer: types.CustomerContext{IsNewCustomer: true, OriginCarrier: "att"},
			device: &types.DeviceSelection{
				ModelID:             "iphone-17-pro-max",
				TradeInValue:        decimal.NewFromInt(600),
				FinancingTermMonths: 24,
			},
			wantID: catalog.PromoKeepAndSwitch,
			want:   "599",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credit, ok, err := r.ResolveCredit(c, tt.customer, tt.device)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, credit.PromotionID)
			assert.True(t, credit.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", credit.Amount)
			assert.Equal(t, 24, credit.TermMonths)
		})
	}
}

func TestResolveCreditNone(t *testing.T) {
	c := catalog.Default()
	r := NewResolver(nil)
	newCustomer := types.CustomerContext{IsNewCustomer: true, OriginCarrier: "verizon"}

	tests := []struct {
		name     string
		customer types.CustomerContext
		device   *types.DeviceSelection
	}{
		{"no device", newCustomer, nil},
		{"owned device", newCustomer, &types.DeviceSelection{ModelID: "iphone-17-pro-max", Owned: true}},
		{"not financed", newCustomer, &types.DeviceSelection{ModelID: "iphone-17-pro-max"}},
		{"accessory device", newCustomer, financed("ipad-air-13")},
		{"no matching promotion", newCustomer, financed("moto-g-2026")},
		{"existing customer", types.CustomerContext{}, financed("iphone-17-pro-max")},
		{"trade-in covers price", newCustomer, &types.DeviceSelection{
			ModelID:             "pixel-10-pro",
			TradeInValue:        decimal.NewFromInt(1200),
			FinancingTermMonths: 24,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := r.ResolveCredit(c, tt.customer, tt.device)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestResolveCreditUnknownDevice(t *testing.T) {
	_, _, err := NewResolver(nil).ResolveCredit(catalog.Default(),
		types.CustomerContext{IsNewCustomer: true}, financed("nokia-3310"))
	assert.True(t, ierr.IsNotFound(err))
}

func TestTiesBreakOnCreditThenID(t *testing.T) {
	b := catalog.DefaultBuilder()
	b.AddPromotion(catalog.Promotion{
		ID:               "a-moto-small",
		DeviceModels:     []string{"moto-g-2026"},
		CreditAmount:     decimal.NewFromInt(50),
		CreditTermMonths: 24,
	})
	b.AddPromotion(catalog.Promotion{
		ID:               "b-moto-big",
		DeviceModels:     []string{"moto-g-2026"},
		CreditAmount:     decimal.NewFromInt(100),
		CreditTermMonths: 24,
	})
	b.AddPromotion(catalog.Promotion{
		ID:               "c-moto-big",
		DeviceModels:     []string{"moto-g-2026"},
		CreditAmount:     decimal.NewFromInt(100),
		CreditTermMonths: 24,
	})
	c, err := b.Build()
	require.NoError(t, err)

	r := NewResolver(nil)
	dev, err := c.Device("moto-g-2026")
	require.NoError(t, err)

	eligible := r.Eligible(c, types.CustomerContext{}, dev)
	require.Len(t, eligible, 3)
	assert.Equal(t, []string{"b-moto-big", "c-moto-big", "a-moto-small"},
		[]string{eligible[0].ID, eligible[1].ID, eligible[2].ID})

	credit, ok, err := r.ResolveCredit(c, types.CustomerContext{}, financed("moto-g-2026"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b-moto-big", credit.PromotionID)
}

func TestCreditAmortizedOverFinancingTerm(t *testing.T) {
	sel := &types.DeviceSelection{ModelID: "iphone-17-pro-max", FinancingTermMonths: 36}
	credit, ok, err := NewResolver(nil).ResolveCredit(catalog.Default(),
		types.CustomerContext{IsNewCustomer: true}, sel)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 36, credit.TermMonths)
	total := credit.Monthly().Mul(decimal.NewFromInt(36))
	assert.True(t, total.Sub(credit.Amount).Abs().LessThan(decimal.RequireFromString("0.000001")))
}
