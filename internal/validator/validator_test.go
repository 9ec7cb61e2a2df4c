package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

func validRequest() *types.QuoteRequest {
	return &types.QuoteRequest{
		PlanID:         "essentials",
		JurisdictionID: "us-metro-a",
		Lines: []types.Line{
			{Index: 1, Device: &types.DeviceSelection{ModelID: "pixel-10-pro", FinancingTermMonths: 24}},
		},
		Accessories: []types.Line{},
	}
}

func TestValidateStructAcceptsValidRequest(t *testing.T) {
	assert.NoError(t, ValidateStruct(validRequest()))
}

func TestValidateStructReportsFields(t *testing.T) {
	req := validRequest()
	req.PlanID = ""
	req.Lines[0].Index = 0
	req.Accessories = nil

	err := ValidateStruct(req)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidRequest(err))
	assert.Contains(t, err.Error(), "QuoteRequest.Accessories, QuoteRequest.Lines[0].Index, QuoteRequest.PlanID")

	var e *ierr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "required", e.Context["QuoteRequest.PlanID"])
	assert.Equal(t, "gte", e.Context["QuoteRequest.Lines[0].Index"])
}

func TestValidateStructChecksDecimalBounds(t *testing.T) {
	req := validRequest()
	req.Lines[0].Device.TradeInValue = decimal.NewFromInt(-5)

	err := ValidateStruct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TradeInValue")
}

func TestValidateStructRejectsUnknownAccessoryKind(t *testing.T) {
	req := validRequest()
	req.Accessories = []types.Line{{Index: 2, Accessory: "drone"}}

	err := ValidateStruct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QuoteRequest.Accessories[0].Accessory")
}
