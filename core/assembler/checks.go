// Package assembler - Cross-field request checks
package assembler

import (
	"github.com/samber/lo"

	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// CheckLines enforces the line rules struct tags cannot express. It does
// not consult the catalog.
func CheckLines(req *types.QuoteRequest) error {
	if req.Accessories == nil {
		return ierr.InvalidRequest("accessories must be an explicit list, use [] for none")
	}
	if len(req.Lines) == 0 {
		return ierr.InvalidRequest("at least one voice line is required")
	}

	all := req.AllLines()
	if dupes := lo.FindDuplicatesBy(all, func(l types.Line) int { return l.Index }); len(dupes) > 0 {
		return ierr.InvalidRequest("duplicate line index %d", dupes[0].Index).
			WithContext("line_index", dupes[0].Index)
	}

	for _, line := range req.Lines {
		if err := checkVoiceLine(line); err != nil {
			return err
		}
	}
	for _, line := range req.Accessories {
		if err := checkAccessoryLine(line); err != nil {
			return err
		}
	}
	return nil
}

func checkVoiceLine(line types.Line) error {
	if line.Accessory.IsAccessory() {
		return lineError(line, "%s line listed as a voice line", line.Accessory)
	}
	if !line.HasDevice() {
		if line.Insured {
			return lineError(line, "insurance requested on a line with no device")
		}
		return lineError(line, "line has neither a device nor an accessory kind")
	}
	return checkDevice(line)
}

func checkAccessoryLine(line types.Line) error {
	if !line.Accessory.IsAccessory() {
		return lineError(line, "voice line listed as an accessory line")
	}
	if line.Insured {
		return lineError(line, "accessory lines cannot carry insurance")
	}
	if !line.HasDevice() {
		return nil
	}
	if line.Device.FinancingTermMonths > 0 {
		return lineError(line, "accessory lines cannot carry device financing")
	}
	return nil
}

func checkDevice(line types.Line) error {
	d := line.Device
	if d.TradeInValue.IsNegative() {
		return lineError(line, "trade-in value cannot be negative")
	}
	if d.Owned && d.FinancingTermMonths > 0 {
		return lineError(line, "an owned device cannot be financed")
	}
	if !d.Owned && d.FinancingTermMonths <= 0 {
		return lineError(line, "a new device needs a financing term")
	}
	return nil
}

func lineError(line types.Line, format string, args ...interface{}) error {
	args = append([]interface{}{line.Index}, args...)
	return ierr.InvalidRequest("line %d: "+format, args...).WithContext("line_index", line.Index)
}
