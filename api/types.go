// Package api - Request and response types for the quote API.
// Quotes are returned exactly as the engine produced them; amounts are
// exact decimal strings.
package api

import (
	"wireless-quote/core/catalog"
	"wireless-quote/core/types"
)

// BatchRequest is the input to POST /quotes/batch
type BatchRequest struct {
	Requests []*types.QuoteRequest `json:"requests"`
}

// BatchResponse is the output of POST /quotes/batch. Results are in request
// order and a failed request does not fail the batch.
type BatchResponse struct {
	CatalogVersion string      `json:"catalog_version"`
	CatalogHash    string      `json:"catalog_hash"`
	Results        []BatchItem `json:"results"`
	Failed         int         `json:"failed"`
}

// BatchItem is one request's outcome; exactly one of Quote and Error is set
type BatchItem struct {
	Index int                  `json:"index"`
	Quote *types.ItemizedQuote `json:"quote,omitempty"`
	Error *ErrorBody           `json:"error,omitempty"`
}

// ErrorResponse wraps an error body
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// CatalogInfo summarizes the catalog currently in effect
type CatalogInfo struct {
	Version         string   `json:"version"`
	Hash            string   `json:"hash"`
	Plans           []string `json:"plans"`
	Jurisdictions   []string `json:"jurisdictions"`
	Devices         int      `json:"devices"`
	Variants        int      `json:"variants"`
	InsuranceTiers  int      `json:"insurance_tiers"`
	PromotionsCount int      `json:"promotions"`
}

func catalogInfo(c *catalog.Catalog) CatalogInfo {
	s := c.Stats()
	return CatalogInfo{
		Version:         s.Version,
		Hash:            s.Hash,
		Plans:           c.PlanIDs(),
		Jurisdictions:   c.JurisdictionIDs(),
		Devices:         s.Devices,
		Variants:        s.Variants,
		InsuranceTiers:  s.Tiers,
		PromotionsCount: s.Promotions,
	}
}
