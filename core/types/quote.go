// Package types - Quote request types
package types

import (
	"github.com/shopspring/decimal"
)

// AccessoryKind identifies a non-phone line. The empty kind is a voice line.
type AccessoryKind string

const (
	// AccessoryNone marks a voice (phone) line
	AccessoryNone AccessoryKind = ""
	// AccessoryWatch is a smartwatch line
	AccessoryWatch AccessoryKind = "watch"
	// AccessoryTablet is a tablet line
	AccessoryTablet AccessoryKind = "tablet"
	// AccessoryWearable is any other connected wearable
	AccessoryWearable AccessoryKind = "wearable"
)

// IsAccessory reports whether the kind marks an accessory line
func (k AccessoryKind) IsAccessory() bool {
	return k != AccessoryNone
}

// CustomerContext carries promotion eligibility facts about the customer
type CustomerContext struct {
	// IsNewCustomer is true when the account does not exist yet
	IsNewCustomer bool `json:"is_new_customer"`

	// OriginCarrier is the carrier the customer is switching from, if any
	OriginCarrier string `json:"origin_carrier,omitempty"`
}

// DeviceSelection is a device chosen for a line
type DeviceSelection struct {
	// ModelID is the catalog device model
	ModelID string `json:"model_id" validate:"required"`

	// StorageGB selects a storage variant; 0 selects the model's only/base variant
	StorageGB int `json:"storage_gb,omitempty" validate:"gte=0"`

	// TradeInValue reduces the financed principal. Zero means no trade-in.
	TradeInValue decimal.Decimal `json:"trade_in_value" validate:"gte=0"`

	// FinancingTermMonths is the installment term for a newly purchased device
	FinancingTermMonths int `json:"financing_term_months,omitempty" validate:"gte=0,lte=60"`

	// Owned marks a device the account already owns (bring your own device).
	// Owned devices are activated but never financed, credited or sales-taxed.
	Owned bool `json:"owned,omitempty"`
}

// IsFinanced reports whether the device is a new purchase paid in installments
func (d *DeviceSelection) IsFinanced() bool {
	return d != nil && !d.Owned && d.FinancingTermMonths > 0
}

// Line is one subscriber slot on the account
type Line struct {
	// Index identifies the line within the request (1..N)
	Index int `json:"index" validate:"gte=1"`

	// Accessory is empty for a voice line
	Accessory AccessoryKind `json:"accessory,omitempty" validate:"omitempty,oneof=watch tablet wearable"`

	// Device is the device activated on the line, if any
	Device *DeviceSelection `json:"device,omitempty"`

	// Insured requests device protection for the line's device
	Insured bool `json:"insured,omitempty"`
}

// HasDevice reports whether a physical device is activated on the line
func (l Line) HasDevice() bool {
	return l.Device != nil
}

// QuoteRequest is a fully assembled pricing input.
// The engine never mutates it.
type QuoteRequest struct {
	// Customer drives promotion eligibility
	Customer CustomerContext `json:"customer"`

	// PlanID is the chosen rate plan
	PlanID string `json:"plan_id" validate:"required"`

	// Autopay is true when the customer enrolls in automatic payment
	Autopay bool `json:"autopay"`

	// JurisdictionID selects the tax and fee schedule
	JurisdictionID string `json:"jurisdiction_id" validate:"required"`

	// Lines are the voice lines
	Lines []Line `json:"lines" validate:"required,min=1,dive"`

	// Accessories are the accessory lines. Must be non-nil: an empty slice
	// states that accessory selection happened and nothing was chosen.
	Accessories []Line `json:"accessories" validate:"required,dive"`
}

// AllLines returns voice lines followed by accessory lines
func (r *QuoteRequest) AllLines() []Line {
	all := make([]Line, 0, len(r.Lines)+len(r.Accessories))
	all = append(all, r.Lines...)
	all = append(all, r.Accessories...)
	return all
}

// ActivatedDevice is a physical device activated on a line. The tax engine
// charges device tax and activation fees from these.
type ActivatedDevice struct {
	LineIndex   int             `json:"line_index"`
	ModelID     string          `json:"model_id"`
	RetailPrice decimal.Decimal `json:"retail_price"`

	// Sold is false for devices the account already owns
	Sold bool `json:"sold"`
}
