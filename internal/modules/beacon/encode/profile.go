// Package encode turns weather observations into APRS weather-report
// packets. A Profile is resolved once from station configuration; Encode is
// then a pure function from (profile, observation) to packet text.
package encode

import (
	"fmt"
	"math"
	"strings"
)

// Profile holds the fixed encoding parameters for one station. Build it with
// ResolveProfile at startup; it must not be mutated afterwards.
type Profile struct {
	MessageType string
	TimeLayout  string // Go time layout, empty when QuirkNoTimestamp

	IncludePosition bool
	LatitudeText    string
	LongitudeText   string
	SymbolTable     string
	SymbolCode      string

	WindDirMarker   string
	WindSpeedMarker string

	Comment          string
	ReportLuminosity bool

	// QuirkNoTimestamp: Accurite 01036 firmware rejects packets carrying a
	// timestamp token, so the header is the message type alone.
	QuirkNoTimestamp bool
}

// StationConfig is the raw configuration the resolver consumes.
type StationConfig struct {
	StationModel     string
	IncludePosition  bool
	Latitude         float64 // decimal degrees, south negative
	Longitude        float64 // decimal degrees, west negative
	SymbolTable      string
	SymbolCode       string
	Comment          string
	ReportLuminosity bool
}

// ResolveProfile derives the immutable encoding profile for a station.
func ResolveProfile(cfg StationConfig) Profile {
	p := Profile{
		MessageType:      "_", // weather report, no position
		TimeLayout:       "01021504",
		SymbolTable:      cfg.SymbolTable,
		SymbolCode:       cfg.SymbolCode,
		Comment:          cfg.Comment,
		ReportLuminosity: cfg.ReportLuminosity,
	}
	if p.SymbolTable == "" {
		p.SymbolTable = "/"
	}
	if p.SymbolCode == "" {
		p.SymbolCode = "_"
	}

	if strings.Contains(cfg.StationModel, "accurite") {
		p.QuirkNoTimestamp = true
		p.TimeLayout = ""
		p.WindDirMarker = "/"
		p.WindSpeedMarker = ""
	} else {
		p.WindDirMarker = "c"
		p.WindSpeedMarker = "s"
	}

	if cfg.IncludePosition {
		// Position with timestamp (no APRS messaging). Overrides the
		// model-specific markers.
		p.IncludePosition = true
		p.MessageType = "/"
		p.TimeLayout = "021504z"
		p.LatitudeText = formatLatitude(cfg.Latitude)
		p.LongitudeText = formatLongitude(cfg.Longitude)
		p.WindDirMarker = ""
		p.WindSpeedMarker = "/"
	}

	return p
}

// formatLatitude renders decimal degrees as APRS ddmm.mm plus hemisphere,
// e.g. 49.0583 -> "4903.50N".
func formatLatitude(lat float64) string {
	deg, min := degreesMinutes(lat)
	hemi := "N"
	if lat < 0 {
		hemi = "S"
	}
	return fmt.Sprintf("%02d%05.2f%s", deg, min, hemi)
}

// formatLongitude renders decimal degrees as APRS dddmm.mm plus hemisphere,
// e.g. -72.0292 -> "07201.75W".
func formatLongitude(lon float64) string {
	deg, min := degreesMinutes(lon)
	hemi := "E"
	if lon < 0 {
		hemi = "W"
	}
	return fmt.Sprintf("%03d%05.2f%s", deg, min, hemi)
}

func degreesMinutes(v float64) (int, float64) {
	abs := math.Abs(v)
	deg := math.Floor(abs)
	return int(deg), (abs - deg) * 60
}
