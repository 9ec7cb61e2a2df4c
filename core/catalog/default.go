// Package catalog - Built-in reference catalog
package catalog

import (
	"github.com/shopspring/decimal"

	"wireless-quote/core/types"
)

// DefaultVersion labels the built-in catalog
const DefaultVersion = "2026.10-builtin"

// Plan, jurisdiction and promotion IDs of the built-in catalog
const (
	PlanExperienceMore = "experience-more"
	PlanEssentials     = "essentials"

	JurisdictionMetro = "us-metro-a"
	JurisdictionNoTax = "us-no-sales-tax"

	PromoNewCustomer   = "new-customer-flagship"
	PromoKeepAndSwitch = "keep-and-switch"
	PromoLoyalty       = "loyalty-upgrade"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

// Default returns the built-in catalog. It is rebuilt on every call, so
// callers get their own sealed value.
func Default() *Catalog {
	return DefaultBuilder().MustBuild()
}

// DefaultBuilder returns a builder preloaded with the built-in tables, for
// callers that want to extend them before sealing.
func DefaultBuilder() *Builder {
	b := NewBuilder(DefaultVersion)

	b.AddPlan(Plan{
		ID:   PlanExperienceMore,
		Name: "Experience More",
		Rates: []RateRow{
			{MinLines: 1, MaxLines: 1, PerLine: dec("95.00")},
			{MinLines: 2, MaxLines: 2, PerLine: dec("85.00")},
			{MinLines: 3, MaxLines: 3, PerLine: dec("71.67")},
			{MinLines: 4, MaxLines: 4, PerLine: dec("60.00")},
			{MinLines: 5, PerLine: dec("55.00")},
			{MinLines: 1, MaxLines: 1, Autopay: true, PerLine: dec("90.00")},
			{MinLines: 2, MaxLines: 2, Autopay: true, PerLine: dec("80.00")},
			{MinLines: 3, MaxLines: 3, Autopay: true, PerLine: dec("66.67")},
			{MinLines: 4, MaxLines: 4, Autopay: true, PerLine: dec("55.00")},
			{MinLines: 5, Autopay: true, PerLine: dec("50.00")},
		},
		AccessoryRates: map[types.AccessoryKind]decimal.Decimal{
			types.AccessoryWatch:    dec("5.00"),
			types.AccessoryTablet:   dec("5.00"),
			types.AccessoryWearable: dec("5.00"),
		},
		AccessoryTaxInclusive: true,
	})

	b.AddPlan(Plan{
		ID:   PlanEssentials,
		Name: "Essentials",
		Rates: []RateRow{
			{MinLines: 1, MaxLines: 1, PerLine: dec("65.00")},
			{MinLines: 2, MaxLines: 2, PerLine: dec("50.00")},
			{MinLines: 3, PerLine: dec("35.00")},
			{MinLines: 1, MaxLines: 1, Autopay: true, PerLine: dec("60.00")},
			{MinLines: 2, MaxLines: 2, Autopay: true, PerLine: dec("45.00")},
			{MinLines: 3, Autopay: true, PerLine: dec("30.00")},
		},
		AccessoryRates: map[types.AccessoryKind]decimal.Decimal{
			types.AccessoryWatch:  dec("10.00"),
			types.AccessoryTablet: dec("20.00"),
		},
	})

	b.AddDevice(Device{ModelID: "iphone-17-pro-max", Name: "iPhone 17 Pro Max", Category: CategoryPhone,
		Variants: []Variant{{256, dec("1199.00")}, {512, dec("1399.00")}, {1024, dec("1599.00")}}})
	b.AddDevice(Device{ModelID: "galaxy-s25-ultra", Name: "Galaxy S25 Ultra", Category: CategoryPhone,
		Variants: []Variant{{256, dec("1299.99")}, {512, dec("1419.99")}}})
	b.AddDevice(Device{ModelID: "pixel-10-pro", Name: "Pixel 10 Pro", Category: CategoryPhone,
		Variants: []Variant{{128, dec("999.00")}, {256, dec("1099.00")}}})
	b.AddDevice(Device{ModelID: "moto-g-2026", Name: "moto g 2026", Category: CategoryPhone,
		Variants: []Variant{{128, dec("199.99")}}})
	b.AddDevice(Device{ModelID: "watch-byod", Name: "Smartwatch (own device)", Category: CategoryWatch,
		Variants: []Variant{{0, decimal.Zero}}})
	b.AddDevice(Device{ModelID: "tablet-byod", Name: "Tablet (own device)", Category: CategoryTablet,
		Variants: []Variant{{0, decimal.Zero}}})
	b.AddDevice(Device{ModelID: "ipad-air-13", Name: "iPad Air 13-inch", Category: CategoryTablet,
		Variants: []Variant{{128, dec("799.00")}, {256, dec("899.00")}}})

	b.AddInsuranceTier(InsuranceTier{ID: "tier-1", Min: dec("0"), Max: decPtr("400"), Premium: dec("9.00")})
	b.AddInsuranceTier(InsuranceTier{ID: "tier-2", Min: dec("400"), Max: decPtr("800"), Premium: dec("13.00")})
	b.AddInsuranceTier(InsuranceTier{ID: "tier-3", Min: dec("800"), Max: decPtr("1000"), Premium: dec("18.00")})
	b.AddInsuranceTier(InsuranceTier{ID: "tier-4", Min: dec("1000"), Premium: dec("25.00")})

	b.AddJurisdiction(Jurisdiction{
		ID:                      JurisdictionMetro,
		Name:                    "Metro A",
		ServiceTaxRate:          dec("0.1444"),
		DeviceSalesTaxRate:      dec("0.07"),
		PerLineRegulatoryFee:    dec("3.99"),
		PerLineFederalSurcharge: dec("2.50"),
		PerDeviceActivationFee:  dec("35.00"),
	})
	b.AddJurisdiction(Jurisdiction{
		ID:                      JurisdictionNoTax,
		Name:                    "No sales tax state",
		ServiceTaxRate:          dec("0.0251"),
		DeviceSalesTaxRate:      decimal.Zero,
		PerLineRegulatoryFee:    dec("3.49"),
		PerLineFederalSurcharge: dec("1.80"),
		PerDeviceActivationFee:  dec("35.00"),
	})

	b.AddPromotion(Promotion{
		ID:                 PromoNewCustomer,
		Name:               "New customer flagship credit",
		RequireNewCustomer: true,
		DeviceModels:       []string{"iphone-17-pro-max", "galaxy-s25-ultra", "pixel-10-pro"},
		CreditAmount:       dec("800.00"),
		CreditTermMonths:   24,
	})
	b.AddPromotion(Promotion{
		ID:                 PromoKeepAndSwitch,
		Name:               "Keep & Switch",
		RequireNewCustomer: true,
		OriginCarriers:     []string{"verizon", "att"},
		DeviceModels:       []string{"iphone-17-pro-max"},
		CreditAmount:       dec("1000.00"),
		CreditTermMonths:   24,
	})
	b.AddPromotion(Promotion{
		ID:               PromoLoyalty,
		Name:             "Loyalty upgrade credit",
		DeviceModels:     []string{"galaxy-s25-ultra"},
		CreditAmount:     dec("300.00"),
		CreditTermMonths: 24,
	})

	return b
}
