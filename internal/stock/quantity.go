package stock

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Quantity is an amount of stock. It is serialized as a string with two
// decimals so clients never see floating-point artifacts.
type Quantity float64

// String formats the quantity with two decimals
func (q Quantity) String() string {
	return strconv.FormatFloat(float64(q), 'f', 2, 64)
}

// MarshalJSON encodes the quantity as a fixed two-decimal string
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON accepts both the string form and a bare number
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", s, err)
		}
		*q = Quantity(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid quantity: %w", err)
	}
	*q = Quantity(v)
	return nil
}
