package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FlexibleAmount accepts a JSON string, integer or float and keeps it
// as an exact decimal. Suppliers are inconsistent about how they send
// money fields.
type FlexibleAmount struct {
	decimal.Decimal
}

func (fa *FlexibleAmount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			fa.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("unable to parse %q as amount", s)
		}
		fa.Decimal = d
		return nil
	}

	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err == nil {
		fa.Decimal = d
		return nil
	}

	return fmt.Errorf("unable to parse %s as FlexibleAmount", string(data))
}

// MinorUnits truncates toward zero to whole minor-currency units.
func (fa FlexibleAmount) MinorUnits() int64 {
	return fa.Decimal.IntPart()
}
