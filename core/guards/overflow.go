// Package guards - Runtime money guards
// A quote must never carry a negative non-credit amount. In strict mode an
// over-credited device is an error; otherwise its principal is clamped to
// zero and the clamp is recorded as a warning.
package guards

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// OverflowGuard checks amounts for one quote computation. It is not safe
// for concurrent use; create one per quote.
type OverflowGuard struct {
	strict   bool
	logger   *zap.Logger
	warnings []string
}

// NewOverflowGuard creates a guard. strict turns clamps into errors.
func NewOverflowGuard(strict bool, logger *zap.Logger) *OverflowGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverflowGuard{
		strict:   strict,
		logger:   logger,
		warnings: []string{},
	}
}

// Strict reports whether clamps are errors
func (g *OverflowGuard) Strict() bool {
	return g.strict
}

// Principal returns retail - tradeIn - credit. A negative result is a
// ROUNDING_OVERFLOW in strict mode and clamps to zero otherwise.
func (g *OverflowGuard) Principal(lineIndex int, modelID string, retail, tradeIn, credit decimal.Decimal) (decimal.Decimal, error) {
	principal := retail.Sub(tradeIn).Sub(credit)
	if !principal.IsNegative() {
		return principal, nil
	}

	if g.strict {
		return decimal.Zero, ierr.RoundingOverflow(
			"line %d: financed principal for %s is negative (retail %s, trade-in %s, credit %s)",
			lineIndex, modelID, retail, tradeIn, credit).
			WithContext("line_index", lineIndex).
			WithContext("principal", principal.String())
	}

	msg := fmt.Sprintf("PRINCIPAL CLAMPED: line %d %s %s -> 0", lineIndex, modelID, principal)
	g.warnings = append(g.warnings, msg)
	g.logger.Warn("financed principal clamped to zero",
		zap.Int("line_index", lineIndex),
		zap.String("model_id", modelID),
		zap.String("principal", principal.String()),
	)
	return decimal.Zero, nil
}

// NonNegative returns a ROUNDING_OVERFLOW when amount is negative. It
// applies in every mode.
func (g *OverflowGuard) NonNegative(what string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ierr.RoundingOverflow("%s is negative: %s", what, amount).
			WithContext("amount", amount.String())
	}
	return nil
}

// Items checks every item amount. Credits are folded into financing, so
// no emitted item may be negative.
func (g *OverflowGuard) Items(items []types.LineItem) error {
	for _, item := range items {
		what := item.Kind.String()
		if item.LineIndex > 0 {
			what = fmt.Sprintf("%s on line %d", what, item.LineIndex)
		}
		if err := g.NonNegative(what, item.Amount); err != nil {
			return err
		}
	}
	return nil
}

// Warnings returns the clamps recorded so far
func (g *OverflowGuard) Warnings() []string {
	return g.warnings
}

// RequireSealed rejects catalogs that were never validated and sealed
func RequireSealed(c *catalog.Catalog) error {
	if !c.IsSealed() {
		return ierr.Config("quote requested against an unsealed catalog")
	}
	return nil
}
