// Package catalog - Catalog builder
package catalog

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// Builder assembles a catalog. Build validates, hashes and seals it.
// Inputs are copied, so callers may reuse their values afterwards.
type Builder struct {
	version       string
	plans         map[string]*Plan
	devices       map[string]*Device
	tiers         []InsuranceTier
	jurisdictions map[string]*Jurisdiction
	promotions    []Promotion
	dupes         []string
}

// NewBuilder creates a builder for a catalog version
func NewBuilder(version string) *Builder {
	return &Builder{
		version:       version,
		plans:         make(map[string]*Plan),
		devices:       make(map[string]*Device),
		jurisdictions: make(map[string]*Jurisdiction),
	}
}

// AddPlan adds a rate plan
func (b *Builder) AddPlan(p Plan) *Builder {
	if _, exists := b.plans[p.ID]; exists {
		b.dupes = append(b.dupes, "plan "+p.ID)
	}
	cp := p
	cp.Rates = append([]RateRow(nil), p.Rates...)
	cp.AccessoryRates = make(map[types.AccessoryKind]decimal.Decimal, len(p.AccessoryRates))
	for k, v := range p.AccessoryRates {
		cp.AccessoryRates[k] = v
	}
	b.plans[p.ID] = &cp
	return b
}

// AddDevice adds a device model
func (b *Builder) AddDevice(d Device) *Builder {
	if _, exists := b.devices[d.ModelID]; exists {
		b.dupes = append(b.dupes, "device "+d.ModelID)
	}
	cp := d
	cp.Variants = append([]Variant(nil), d.Variants...)
	sortVariants(cp.Variants)
	b.devices[d.ModelID] = &cp
	return b
}

// AddInsuranceTier adds an insurance price band
func (b *Builder) AddInsuranceTier(t InsuranceTier) *Builder {
	cp := t
	if t.Max != nil {
		max := *t.Max
		cp.Max = &max
	}
	b.tiers = append(b.tiers, cp)
	return b
}

// AddJurisdiction adds a tax and fee schedule
func (b *Builder) AddJurisdiction(j Jurisdiction) *Builder {
	if _, exists := b.jurisdictions[j.ID]; exists {
		b.dupes = append(b.dupes, "jurisdiction "+j.ID)
	}
	cp := j
	b.jurisdictions[j.ID] = &cp
	return b
}

// AddPromotion adds a device credit offer
func (b *Builder) AddPromotion(p Promotion) *Builder {
	for _, existing := range b.promotions {
		if existing.ID == p.ID {
			b.dupes = append(b.dupes, "promotion "+p.ID)
		}
	}
	cp := p
	cp.OriginCarriers = append([]string(nil), p.OriginCarriers...)
	cp.DeviceCategories = append([]DeviceCategory(nil), p.DeviceCategories...)
	cp.DeviceModels = append([]string(nil), p.DeviceModels...)
	b.promotions = append(b.promotions, cp)
	return b
}

// Build validates the tables and returns a sealed catalog
func (b *Builder) Build() (*Catalog, error) {
	if len(b.dupes) > 0 {
		return nil, ierr.Config("duplicate catalog entries: %v", b.dupes)
	}

	tiers := append([]InsuranceTier(nil), b.tiers...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Min.LessThan(tiers[j].Min) })

	promotions := append([]Promotion(nil), b.promotions...)
	sort.Slice(promotions, func(i, j int) bool { return promotions[i].ID < promotions[j].ID })

	for _, p := range b.plans {
		sortRates(p.Rates)
	}

	c := &Catalog{
		version:       b.version,
		plans:         b.plans,
		devices:       b.devices,
		tiers:         tiers,
		jurisdictions: b.jurisdictions,
		promotions:    promotions,
	}

	if err := Validate(c); err != nil {
		return nil, err
	}

	hash, err := c.computeHash()
	if err != nil {
		return nil, ierr.Internal("hash catalog", err)
	}
	c.hash = hash
	c.sealed = true

	// The builder must not be able to reach into a sealed catalog.
	b.plans = make(map[string]*Plan)
	b.devices = make(map[string]*Device)
	b.jurisdictions = make(map[string]*Jurisdiction)

	return c, nil
}

// MustBuild is Build for static catalogs; it panics on invalid tables
func (b *Builder) MustBuild() *Catalog {
	c, err := b.Build()
	if err != nil {
		panic("INVALID CATALOG: " + err.Error())
	}
	return c
}

// canonical is the hashed and exported shape of a catalog
type canonical struct {
	Version       string          `json:"version"`
	Plans         []*Plan         `json:"plans"`
	Devices       []*Device       `json:"devices"`
	Tiers         []InsuranceTier `json:"insurance_tiers"`
	Jurisdictions []*Jurisdiction `json:"jurisdictions"`
	Promotions    []Promotion     `json:"promotions"`
}

func (c *Catalog) canonical() canonical {
	out := canonical{
		Version:    c.version,
		Tiers:      c.tiers,
		Promotions: c.promotions,
	}
	for _, id := range determinism.SortedKeys(c.plans) {
		out.Plans = append(out.Plans, c.plans[id])
	}
	for _, id := range determinism.SortedKeys(c.devices) {
		out.Devices = append(out.Devices, c.devices[id])
	}
	for _, id := range determinism.SortedKeys(c.jurisdictions) {
		out.Jurisdictions = append(out.Jurisdictions, c.jurisdictions[id])
	}
	return out
}

// MarshalJSON exports the catalog in canonical order
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.canonical())
}

// computeHash hashes the canonical JSON. encoding/json sorts map keys, so
// accessory rate maps serialize deterministically.
func (c *Catalog) computeHash() (determinism.ContentHash, error) {
	data, err := json.Marshal(c.canonical())
	if err != nil {
		return determinism.ContentHash{}, err
	}
	return determinism.ComputeHash(data), nil
}

// Verify recomputes the content hash and compares it to the sealed hash
func (c *Catalog) Verify() bool {
	h, err := c.computeHash()
	return err == nil && h == c.hash
}

func sortRates(rows []RateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Autopay != rows[j].Autopay {
			return !rows[i].Autopay
		}
		return rows[i].MinLines < rows[j].MinLines
	})
}
