// Package catalog - Immutable reference catalogs for quote pricing.
// A Catalog is built once, validated, content-hashed and sealed. Every engine
// call receives the catalog explicitly; there is no package-level catalog.
package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// DeviceCategory classifies a device for promotions and line compatibility
type DeviceCategory string

const (
	CategoryPhone    DeviceCategory = "phone"
	CategoryWatch    DeviceCategory = "watch"
	CategoryTablet   DeviceCategory = "tablet"
	CategoryWearable DeviceCategory = "wearable"
)

// IsAccessory reports whether devices of this category ride on accessory lines
func (c DeviceCategory) IsAccessory() bool {
	return c != CategoryPhone
}

// RateRow prices every line on the account when the voice line count falls
// in [MinLines, MaxLines]. MaxLines of 0 is open-ended.
type RateRow struct {
	MinLines int             `json:"min_lines"`
	MaxLines int             `json:"max_lines"`
	Autopay  bool            `json:"autopay"`
	PerLine  decimal.Decimal `json:"per_line"`
}

// Covers reports whether the row applies to lineCount
func (r RateRow) Covers(lineCount int) bool {
	return lineCount >= r.MinLines && (r.MaxLines == 0 || lineCount <= r.MaxLines)
}

// Plan is a rate plan
type Plan struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Rates is the multi-line rate schedule
	Rates []RateRow `json:"rates"`

	// AccessoryRates is the monthly line fee per accessory kind on this plan
	AccessoryRates map[types.AccessoryKind]decimal.Decimal `json:"accessory_rates"`

	// AccessoryTaxInclusive marks accessory line fees as already including
	// service tax, which keeps them out of the service-tax base
	AccessoryTaxInclusive bool `json:"accessory_tax_inclusive"`
}

// Variant is a priced storage configuration of a device
type Variant struct {
	StorageGB   int             `json:"storage_gb"`
	RetailPrice decimal.Decimal `json:"retail_price"`
}

// Device is a device model in the price list
type Device struct {
	ModelID  string         `json:"model_id"`
	Name     string         `json:"name"`
	Category DeviceCategory `json:"category"`

	// Variants are sorted by storage ascending after Build
	Variants []Variant `json:"variants"`
}

// InsuranceTier maps the price band [Min, Max) to a monthly premium.
// A nil Max is open-ended.
type InsuranceTier struct {
	ID      string           `json:"id"`
	Min     decimal.Decimal  `json:"min"`
	Max     *decimal.Decimal `json:"max,omitempty"`
	Premium decimal.Decimal  `json:"premium"`
}

// Contains reports whether price falls inside the band
func (t InsuranceTier) Contains(price decimal.Decimal) bool {
	if price.LessThan(t.Min) {
		return false
	}
	return t.Max == nil || price.LessThan(*t.Max)
}

// Jurisdiction is a tax and fee schedule
type Jurisdiction struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ServiceTaxRate is a fraction applied to recurring service charges
	ServiceTaxRate decimal.Decimal `json:"service_tax_rate"`

	// DeviceSalesTaxRate is a fraction applied once to each sold device's retail price
	DeviceSalesTaxRate decimal.Decimal `json:"device_sales_tax_rate"`

	// PerLineRegulatoryFee is charged monthly per voice line
	PerLineRegulatoryFee decimal.Decimal `json:"per_line_regulatory_fee"`

	// PerLineFederalSurcharge is charged monthly per voice line
	PerLineFederalSurcharge decimal.Decimal `json:"per_line_federal_surcharge"`

	// PerDeviceActivationFee is charged once per activated physical device
	PerDeviceActivationFee decimal.Decimal `json:"per_device_activation_fee"`
}

// Promotion is a device credit offer
type Promotion struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// RequireNewCustomer restricts the offer to new accounts
	RequireNewCustomer bool `json:"require_new_customer"`

	// OriginCarriers restricts the offer to customers switching from these carriers
	OriginCarriers []string `json:"origin_carriers,omitempty"`

	// DeviceCategories restricts the offer to these device categories
	DeviceCategories []DeviceCategory `json:"device_categories,omitempty"`

	// DeviceModels restricts the offer to these models
	DeviceModels []string `json:"device_models,omitempty"`

	// CreditAmount is the total credit over the life of the offer
	CreditAmount decimal.Decimal `json:"credit_amount"`

	// CreditTermMonths is the advertised credit term. Credits are always
	// amortized over the device financing term.
	CreditTermMonths int `json:"credit_term_months"`
}

// AppliesToDevice reports whether the device predicates match
func (p *Promotion) AppliesToDevice(d *Device) bool {
	if d == nil {
		return false
	}
	if len(p.DeviceModels) > 0 && !contains(p.DeviceModels, d.ModelID) {
		return false
	}
	if len(p.DeviceCategories) > 0 && !contains(p.DeviceCategories, d.Category) {
		return false
	}
	return true
}

// Specificity counts the eligibility predicates the promotion constrains.
// More constrained offers outrank generic ones.
func (p *Promotion) Specificity() int {
	n := 0
	if p.RequireNewCustomer {
		n++
	}
	if len(p.OriginCarriers) > 0 {
		n++
	}
	if len(p.DeviceCategories) > 0 {
		n++
	}
	if len(p.DeviceModels) > 0 {
		n++
	}
	return n
}

// Catalog is a sealed, versioned set of reference tables
type Catalog struct {
	version       string
	plans         map[string]*Plan
	devices       map[string]*Device
	tiers         []InsuranceTier
	jurisdictions map[string]*Jurisdiction
	promotions    []Promotion
	hash          determinism.ContentHash
	sealed        bool
}

// Version returns the catalog version label
func (c *Catalog) Version() string {
	return c.version
}

// Hash returns the content hash computed at seal time
func (c *Catalog) Hash() determinism.ContentHash {
	return c.hash
}

// IsSealed reports whether the catalog passed validation and is immutable
func (c *Catalog) IsSealed() bool {
	return c != nil && c.sealed
}

// Plan returns a plan by ID
func (c *Catalog) Plan(planID string) (*Plan, error) {
	p, ok := c.plans[planID]
	if !ok {
		return nil, ierr.NotFound("plan", planID)
	}
	return p, nil
}

// RatePerLine returns the per-line monthly rate for the plan at lineCount lines
func (c *Catalog) RatePerLine(planID string, lineCount int, autopay bool) (decimal.Decimal, error) {
	p, err := c.Plan(planID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, row := range p.Rates {
		if row.Autopay == autopay && row.Covers(lineCount) {
			return row.PerLine, nil
		}
	}
	return decimal.Zero, ierr.NotFound("plan rate", fmt.Sprintf("%s lines=%d autopay=%t", planID, lineCount, autopay))
}

// AccessoryRate returns the plan's monthly line fee for an accessory kind
func (c *Catalog) AccessoryRate(planID string, kind types.AccessoryKind) (decimal.Decimal, error) {
	p, err := c.Plan(planID)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := p.AccessoryRates[kind]
	if !ok {
		return decimal.Zero, ierr.NotFound("accessory rate", fmt.Sprintf("%s/%s", planID, kind))
	}
	return rate, nil
}

// Device returns a device model by ID
func (c *Catalog) Device(modelID string) (*Device, error) {
	d, ok := c.devices[modelID]
	if !ok {
		return nil, ierr.NotFound("device", modelID)
	}
	return d, nil
}

// RetailPrice resolves a device variant price. storageGB of 0 selects the
// base (smallest storage) variant.
func (c *Catalog) RetailPrice(modelID string, storageGB int) (decimal.Decimal, error) {
	d, err := c.Device(modelID)
	if err != nil {
		return decimal.Zero, err
	}
	if storageGB == 0 {
		return d.Variants[0].RetailPrice, nil
	}
	for _, v := range d.Variants {
		if v.StorageGB == storageGB {
			return v.RetailPrice, nil
		}
	}
	return decimal.Zero, ierr.NotFound("device variant", fmt.Sprintf("%s/%dGB", modelID, storageGB))
}

// TierPremium returns the monthly insurance premium for a device retail price
func (c *Catalog) TierPremium(retailPrice decimal.Decimal) (decimal.Decimal, error) {
	for _, t := range c.tiers {
		if t.Contains(retailPrice) {
			return t.Premium, nil
		}
	}
	return decimal.Zero, ierr.NotFound("insurance tier", retailPrice.String())
}

// TaxSchedule returns a jurisdiction's tax and fee schedule
func (c *Catalog) TaxSchedule(jurisdictionID string) (*Jurisdiction, error) {
	j, ok := c.jurisdictions[jurisdictionID]
	if !ok {
		return nil, ierr.NotFound("jurisdiction", jurisdictionID)
	}
	return j, nil
}

// Promotions returns all promotions sorted by ID
func (c *Catalog) Promotions() []Promotion {
	out := make([]Promotion, len(c.promotions))
	copy(out, c.promotions)
	return out
}

// PlanIDs returns all plan IDs in sorted order
func (c *Catalog) PlanIDs() []string {
	return determinism.SortedKeys(c.plans)
}

// DeviceIDs returns all device model IDs in sorted order
func (c *Catalog) DeviceIDs() []string {
	return determinism.SortedKeys(c.devices)
}

// JurisdictionIDs returns all jurisdiction IDs in sorted order
func (c *Catalog) JurisdictionIDs() []string {
	return determinism.SortedKeys(c.jurisdictions)
}

// InsuranceTiers returns the tiers ordered by band
func (c *Catalog) InsuranceTiers() []InsuranceTier {
	out := make([]InsuranceTier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Stats summarizes catalog contents
type Stats struct {
	Version       string
	Hash          string
	Plans         int
	Devices       int
	Variants      int
	Tiers         int
	Jurisdictions int
	Promotions    int
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	s := Stats{
		Version:       c.version,
		Hash:          c.hash.Hex(),
		Plans:         len(c.plans),
		Devices:       len(c.devices),
		Tiers:         len(c.tiers),
		Jurisdictions: len(c.jurisdictions),
		Promotions:    len(c.promotions),
	}
	for _, d := range c.devices {
		s.Variants += len(d.Variants)
	}
	return s
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func sortVariants(v []Variant) {
	sort.Slice(v, func(i, j int) bool { return v[i].StorageGB < v[j].StorageGB })
}
