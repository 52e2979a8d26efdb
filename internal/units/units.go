// Package units converts scalar sensor values between measurement units.
package units

import "fmt"

type Unit string

const (
	InHg Unit = "inHg"
	Mbar Unit = "mbar"
	HPa  Unit = "hPa" // same magnitude as mbar
)

// millibars per inch of mercury
const mbarPerInHg = 33.8639

// Convert converts value from one unit to another. Unknown conversions
// return an error rather than a silently wrong number.
func Convert(value float64, from, to Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	switch {
	case from == InHg && (to == Mbar || to == HPa):
		return value * mbarPerInHg, nil
	case (from == Mbar || from == HPa) && to == InHg:
		return value / mbarPerInHg, nil
	case (from == Mbar && to == HPa) || (from == HPa && to == Mbar):
		return value, nil
	default:
		return 0, fmt.Errorf("no conversion from %q to %q", from, to)
	}
}
