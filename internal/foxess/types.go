package foxess

import "strings"

// Device is one inverter registered to the account, as returned by
// the device-list endpoint.
type Device struct {
	SerialNumber string `json:"deviceSN"`
	StationName  string `json:"stationName"`
	StationID    string `json:"stationID"`
	ModuleSerial string `json:"moduleSN"`
	DeviceType   string `json:"deviceType"`
	HasPV        bool   `json:"hasPV"`
	HasBattery   bool   `json:"hasBattery"`
}

// TelemetryPoint is one variable from a realtime query.
type TelemetryPoint struct {
	Variable string `json:"variable"`
	Value    Value  `json:"value"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
}

// Realtime is the ordered set of points returned for one device.
// Lookups match variables case-insensitively; the first match wins.
type Realtime []TelemetryPoint

// Lookup returns the point for a variable, false if absent.
func (r Realtime) Lookup(variable string) (TelemetryPoint, bool) {
	for _, p := range r {
		if strings.EqualFold(p.Variable, variable) {
			return p, true
		}
	}
	return TelemetryPoint{}, false
}

// Float returns the numeric reading for a variable, false when the
// variable is absent or non-numeric.
func (r Realtime) Float(variable string) (float64, bool) {
	p, ok := r.Lookup(variable)
	if !ok {
		return 0, false
	}
	return p.Value.Float()
}

// FloatOrZero is Float with absent or non-numeric readings as 0,
// which is how the summary math treats idle channels.
func (r Realtime) FloatOrZero(variable string) float64 {
	f, _ := r.Float(variable)
	return f
}

// Unit returns the variable's unit with the degree sign stripped
// ("°C" renders as "C"), empty if the variable is absent.
func (r Realtime) Unit(variable string) string {
	p, ok := r.Lookup(variable)
	if !ok {
		return ""
	}
	return strings.ReplaceAll(p.Unit, "°C", "C")
}

// DisplayName returns the human-readable name the API reports for a
// variable, falling back to the variable itself.
func (r Realtime) DisplayName(variable string) string {
	if p, ok := r.Lookup(variable); ok && p.Name != "" {
		return p.Name
	}
	return variable
}
