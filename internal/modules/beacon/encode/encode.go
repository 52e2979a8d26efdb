package encode

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/savagebread/weewx-aprs/internal/modules/beacon/types"
	"github.com/savagebread/weewx-aprs/internal/units"
)

// unknown is the APRS placeholder for a field whose value is not available.
const unknown = "..."

// Encode builds one APRS weather-report packet from an observation. It never
// fails: a field whose value cannot be formatted degrades to its placeholder
// or is omitted, the failure is logged, and the remaining fields are still
// emitted. Encoding the same profile and record twice yields identical
// packets.
func Encode(p Profile, rec types.Observation) string {
	frags := make([]string, 0, 16)

	// Header: message type plus timestamp. The Accurite quirk drops the
	// timestamp token entirely.
	frags = append(frags, p.MessageType)
	if !p.QuirkNoTimestamp {
		if rec.DateTime != nil {
			frags = append(frags, time.Unix(*rec.DateTime, 0).UTC().Format(p.TimeLayout))
		} else {
			logFieldError("dateTime", p.MessageType, nil, fmt.Errorf("timestamp missing"))
		}
	}

	if p.IncludePosition {
		frags = append(frags, p.LatitudeText, p.SymbolTable, p.LongitudeText, p.SymbolCode)
	}

	// Wind direction in degrees. APRS reads 0 as "unknown", so true north is
	// reported as 360; round before the comparison so 0.4 clamps too.
	if rec.WindDir != nil {
		frag, err := formatWindDir(p.WindDirMarker, *rec.WindDir)
		if err != nil {
			logFieldError("windDir", p.WindDirMarker, *rec.WindDir, err)
		} else {
			frags = append(frags, frag)
		}
	} else {
		frags = append(frags, p.WindDirMarker+unknown)
	}

	// Wind speed in mph.
	if rec.WindSpeed != nil {
		frag, err := formatPadded(p.WindSpeedMarker, *rec.WindSpeed, 3)
		if err != nil {
			logFieldError("windSpeed", p.WindSpeedMarker, *rec.WindSpeed, err)
		} else {
			frags = append(frags, frag)
		}
	} else {
		frags = append(frags, p.WindSpeedMarker+unknown)
	}

	// Gust: peak wind speed in mph over the interval.
	if rec.WindGust != nil {
		frag, err := formatPadded("g", *rec.WindGust, 3)
		if err != nil {
			logFieldError("windGust", "g", *rec.WindGust, err)
			frags = append(frags, "g"+unknown)
		} else {
			frags = append(frags, frag)
		}
	} else {
		frags = append(frags, "g"+unknown)
	}

	// Outdoor temperature in degrees Fahrenheit. The sign consumes no pad
	// width, so sub-zero readings run to four characters.
	if rec.OutTemp != nil {
		frag, err := formatTemp(*rec.OutTemp)
		if err != nil {
			logFieldError("outTemp", "t", *rec.OutTemp, err)
			frags = append(frags, "t"+unknown)
		} else {
			frags = append(frags, frag)
		}
	} else {
		frags = append(frags, "t"+unknown)
	}

	// Rain in the last hour, hundredths of an inch. No placeholder.
	if rec.RainRate != nil {
		frag, err := formatPadded("r", *rec.RainRate*100, 3)
		if err != nil {
			logFieldError("rainRate", "r", *rec.RainRate, err)
		} else {
			frags = append(frags, frag)
		}
	}

	// Rain since local midnight, hundredths of an inch. No placeholder.
	if rec.DayRain != nil {
		frag, err := formatPadded("P", *rec.DayRain*100, 3)
		if err != nil {
			logFieldError("dayRain", "P", *rec.DayRain, err)
		} else {
			frags = append(frags, frag)
		}
	}

	// Humidity in percent. APRS reads h00 as 100%, so saturate readings
	// clamp to 0 after rounding.
	if rec.OutHumidity != nil {
		frag, err := formatHumidity(*rec.OutHumidity)
		if err != nil {
			logFieldError("outHumidity", "h", *rec.OutHumidity, err)
		} else {
			frags = append(frags, frag)
		}
	}

	// Barometric pressure in tenths of millibars.
	if rec.Barometer != nil {
		frag, err := formatBarometer(*rec.Barometer)
		if err != nil {
			logFieldError("barometer", "b", *rec.Barometer, err)
		} else {
			frags = append(frags, frag)
		}
	}

	// Luminosity in watts per square meter, only when the station opts in.
	if p.ReportLuminosity && rec.Luminosity != nil {
		frag, err := formatLuminosity(*rec.Luminosity)
		if err != nil {
			logFieldError("luminosity", "L", *rec.Luminosity, err)
		} else {
			frags = append(frags, frag)
		}
	}

	if p.Comment != "" {
		frags = append(frags, p.Comment)
	}

	return strings.Join(frags, "")
}

// round is half-away-from-zero, so .5 inputs always move outward rather than
// to the nearest even integer.
func round(v float64) int {
	return int(math.Round(v))
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value %v is not finite", v)
	}
	return nil
}

func formatWindDir(marker string, v float64) (string, error) {
	if err := checkFinite(v); err != nil {
		return "", err
	}
	deg := round(v)
	if deg <= 0 {
		deg = 360
	}
	return fmt.Sprintf("%s%03d", marker, deg), nil
}

func formatPadded(marker string, v float64, width int) (string, error) {
	if err := checkFinite(v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", marker, width, round(v)), nil
}

func formatTemp(v float64) (string, error) {
	if err := checkFinite(v); err != nil {
		return "", err
	}
	n := round(v)
	if n < 0 {
		return fmt.Sprintf("t-%03d", -n), nil
	}
	return fmt.Sprintf("t%03d", n), nil
}

func formatHumidity(v float64) (string, error) {
	if err := checkFinite(v); err != nil {
		return "", err
	}
	pct := round(v)
	if pct >= 100 {
		pct = 0
	}
	if pct < 0 {
		return "", fmt.Errorf("humidity %d%% below range", pct)
	}
	return fmt.Sprintf("h%02d", pct), nil
}

func formatBarometer(inHg float64) (string, error) {
	if err := checkFinite(inHg); err != nil {
		return "", err
	}
	mbar, err := units.Convert(inHg, units.InHg, units.Mbar)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("b%05d", round(mbar*10)), nil
}

func formatLuminosity(v float64) (string, error) {
	if err := checkFinite(v); err != nil {
		return "", err
	}
	n := round(v)
	if n < 0 {
		return "", fmt.Errorf("luminosity %d is negative", n)
	}
	return fmt.Sprintf("L%03d", n), nil
}

func logFieldError(field, marker string, value any, err error) {
	slog.Error("packet field formatting failed",
		"field", field,
		"marker", marker,
		"value", value,
		"error", err,
	)
}
