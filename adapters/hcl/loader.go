// Package hcl loads reference catalogs from HCL files.
//
// A catalog file looks like:
//
//	version = "2026.10"
//
//	plan "experience-more" {
//	  name                    = "Experience More"
//	  accessory_tax_inclusive = true
//	  accessory_rates         = { watch = "5.00", tablet = "5.00" }
//
//	  rate {
//	    min_lines = 1
//	    max_lines = 1
//	    per_line  = "95.00"
//	  }
//	}
//
// Money and rates are strings so they parse exactly into decimals.
package hcl

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

type fileSchema struct {
	Version       string              `hcl:"version"`
	Plans         []planBlock         `hcl:"plan,block"`
	Devices       []deviceBlock       `hcl:"device,block"`
	Tiers         []tierBlock         `hcl:"insurance_tier,block"`
	Jurisdictions []jurisdictionBlock `hcl:"jurisdiction,block"`
	Promotions    []promotionBlock    `hcl:"promotion,block"`
}

type planBlock struct {
	ID                    string            `hcl:"id,label"`
	Name                  string            `hcl:"name,optional"`
	AccessoryTaxInclusive bool              `hcl:"accessory_tax_inclusive,optional"`
	AccessoryRates        map[string]string `hcl:"accessory_rates,optional"`
	Rates                 []rateBlock       `hcl:"rate,block"`
}

type rateBlock struct {
	MinLines int    `hcl:"min_lines"`
	MaxLines int    `hcl:"max_lines,optional"`
	Autopay  bool   `hcl:"autopay,optional"`
	PerLine  string `hcl:"per_line"`
}

type deviceBlock struct {
	ModelID  string         `hcl:"model_id,label"`
	Name     string         `hcl:"name,optional"`
	Category string         `hcl:"category"`
	Variants []variantBlock `hcl:"variant,block"`
}

type variantBlock struct {
	StorageGB   int    `hcl:"storage_gb,optional"`
	RetailPrice string `hcl:"retail_price"`
}

type tierBlock struct {
	ID      string  `hcl:"id,label"`
	Min     string  `hcl:"min"`
	Max     *string `hcl:"max,optional"`
	Premium string  `hcl:"premium"`
}

type jurisdictionBlock struct {
	ID                      string `hcl:"id,label"`
	Name                    string `hcl:"name,optional"`
	ServiceTaxRate          string `hcl:"service_tax_rate"`
	DeviceSalesTaxRate      string `hcl:"device_sales_tax_rate"`
	PerLineRegulatoryFee    string `hcl:"per_line_regulatory_fee"`
	PerLineFederalSurcharge string `hcl:"per_line_federal_surcharge"`
	PerDeviceActivationFee  string `hcl:"per_device_activation_fee"`
}

type promotionBlock struct {
	ID                 string   `hcl:"id,label"`
	Name               string   `hcl:"name,optional"`
	RequireNewCustomer bool     `hcl:"require_new_customer,optional"`
	OriginCarriers     []string `hcl:"origin_carriers,optional"`
	DeviceCategories   []string `hcl:"device_categories,optional"`
	DeviceModels       []string `hcl:"device_models,optional"`
	CreditAmount       string   `hcl:"credit_amount"`
	CreditTermMonths   int      `hcl:"credit_term_months,optional"`
}

// Loader parses HCL catalog files
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new HCL catalog loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFile reads, parses, validates and seals the catalog at path
func (l *Loader) LoadFile(path string) (*catalog.Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.Parsing(fmt.Sprintf("read catalog %s", path), err)
	}
	c, err := l.Parse(src, path)
	if err != nil {
		return nil, err
	}
	l.logger.Info("catalog loaded",
		zap.String("path", path),
		zap.String("version", c.Version()),
		zap.String("hash", c.Hash().String()),
	)
	return c, nil
}

// LoadFunc adapts LoadFile for catalog.Store reloads
func (l *Loader) LoadFunc(path string) catalog.LoadFunc {
	return func() (*catalog.Catalog, error) {
		return l.LoadFile(path)
	}
}

// Parse decodes catalog source. filename is used in diagnostics only.
// Each call gets its own hclparse.Parser, which caches files by name and is
// not safe for concurrent use.
func (l *Loader) Parse(src []byte, filename string) (*catalog.Catalog, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	b, err := toBuilder(&schema)
	if err != nil {
		return nil, ierr.Parsing(filename, err)
	}
	return b.Build()
}

func diagError(filename string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msgs = append(msgs, fmt.Sprintf("%s:%d: %s", filename, line, diag.Summary))
	}
	return ierr.Parsing("invalid catalog file", diags).WithContext("diagnostics", msgs)
}

// decimals collects parse failures so one pass reports all bad amounts
type decimals struct {
	errs []string
}

func (p *decimals) parse(where, s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %q is not a decimal", where, s))
		return decimal.Zero
	}
	return d
}

func (p *decimals) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(p.errs, "; "))
}

func toBuilder(s *fileSchema) (*catalog.Builder, error) {
	var p decimals
	b := catalog.NewBuilder(s.Version)

	for _, pb := range s.Plans {
		plan := catalog.Plan{
			ID:                    pb.ID,
			Name:                  pb.Name,
			AccessoryTaxInclusive: pb.AccessoryTaxInclusive,
			AccessoryRates:        make(map[types.AccessoryKind]decimal.Decimal, len(pb.AccessoryRates)),
		}
		for kind, rate := range pb.AccessoryRates {
			plan.AccessoryRates[types.AccessoryKind(kind)] = p.parse("plan "+pb.ID+" accessory "+kind, rate)
		}
		for _, rb := range pb.Rates {
			plan.Rates = append(plan.Rates, catalog.RateRow{
				MinLines: rb.MinLines,
				MaxLines: rb.MaxLines,
				Autopay:  rb.Autopay,
				PerLine:  p.parse(fmt.Sprintf("plan %s rate %d", pb.ID, rb.MinLines), rb.PerLine),
			})
		}
		b.AddPlan(plan)
	}

	for _, db := range s.Devices {
		dev := catalog.Device{ModelID: db.ModelID, Name: db.Name, Category: catalog.DeviceCategory(db.Category)}
		for _, vb := range db.Variants {
			dev.Variants = append(dev.Variants, catalog.Variant{
				StorageGB:   vb.StorageGB,
				RetailPrice: p.parse(fmt.Sprintf("device %s %dGB", db.ModelID, vb.StorageGB), vb.RetailPrice),
			})
		}
		b.AddDevice(dev)
	}

	for _, tb := range s.Tiers {
		tier := catalog.InsuranceTier{
			ID:      tb.ID,
			Min:     p.parse("tier "+tb.ID+" min", tb.Min),
			Premium: p.parse("tier "+tb.ID+" premium", tb.Premium),
		}
		if tb.Max != nil {
			max := p.parse("tier "+tb.ID+" max", *tb.Max)
			tier.Max = &max
		}
		b.AddInsuranceTier(tier)
	}

	for _, jb := range s.Jurisdictions {
		b.AddJurisdiction(catalog.Jurisdiction{
			ID:                      jb.ID,
			Name:                    jb.Name,
			ServiceTaxRate:          p.parse("jurisdiction "+jb.ID+" service_tax_rate", jb.ServiceTaxRate),
			DeviceSalesTaxRate:      p.parse("jurisdiction "+jb.ID+" device_sales_tax_rate", jb.DeviceSalesTaxRate),
			PerLineRegulatoryFee:    p.parse("jurisdiction "+jb.ID+" per_line_regulatory_fee", jb.PerLineRegulatoryFee),
			PerLineFederalSurcharge: p.parse("jurisdiction "+jb.ID+" per_line_federal_surcharge", jb.PerLineFederalSurcharge),
			PerDeviceActivationFee:  p.parse("jurisdiction "+jb.ID+" per_device_activation_fee", jb.PerDeviceActivationFee),
		})
	}

	for _, pr := range s.Promotions {
		promo := catalog.Promotion{
			ID:                 pr.ID,
			Name:               pr.Name,
			RequireNewCustomer: pr.RequireNewCustomer,
			OriginCarriers:     pr.OriginCarriers,
			DeviceModels:       pr.DeviceModels,
			CreditAmount:       p.parse("promotion "+pr.ID+" credit_amount", pr.CreditAmount),
			CreditTermMonths:   pr.CreditTermMonths,
		}
		for _, c := range pr.DeviceCategories {
			promo.DeviceCategories = append(promo.DeviceCategories, catalog.DeviceCategory(c))
		}
		b.AddPromotion(promo)
	}

	return b, p.err()
}
