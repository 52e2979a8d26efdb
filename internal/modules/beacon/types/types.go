package types

// Observation is one archive record from the weather engine. Every field is
// optional; a nil pointer means the sensor value is unknown for this
// interval and the encoder substitutes the field's placeholder or omits it.
type Observation struct {
	DateTime    *int64   `json:"dateTime,omitempty"`    // unix seconds, UTC
	WindDir     *float64 `json:"windDir,omitempty"`     // degrees, 0-360
	WindSpeed   *float64 `json:"windSpeed,omitempty"`   // mph
	WindGust    *float64 `json:"windGust,omitempty"`    // mph, peak over the interval
	OutTemp     *float64 `json:"outTemp,omitempty"`     // degrees Fahrenheit
	RainRate    *float64 `json:"rainRate,omitempty"`    // inches per hour
	DayRain     *float64 `json:"dayRain,omitempty"`     // inches since local midnight
	OutHumidity *float64 `json:"outHumidity,omitempty"` // percent, 0-100
	Barometer   *float64 `json:"barometer,omitempty"`   // inches of mercury
	Luminosity  *float64 `json:"luminosity,omitempty"`  // watts per square meter
}

// Empty reports whether the record carries no sensor values at all.
func (o Observation) Empty() bool {
	return o.DateTime == nil &&
		o.WindDir == nil &&
		o.WindSpeed == nil &&
		o.WindGust == nil &&
		o.OutTemp == nil &&
		o.RainRate == nil &&
		o.DayRain == nil &&
		o.OutHumidity == nil &&
		o.Barometer == nil &&
		o.Luminosity == nil
}

// Packet is one archived APRS weather packet.
type Packet struct {
	ID         int64  `json:"id"`
	EncodedAt  string `json:"encodedAt"` // RFC3339Nano, UTC
	PacketText string `json:"packet"`
}
