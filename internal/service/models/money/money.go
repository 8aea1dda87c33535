package money

import "fmt"

// Cents is a monetary amount in minor units.
type Cents int64

// String renders the amount with two decimal places, e.g. 1500.50.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
