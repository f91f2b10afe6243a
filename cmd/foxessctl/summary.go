package main

import "github.com/foxtools/foxessctl/internal/foxess"

// Readings at or below this are sensor noise on the solar channels
// and render as exactly zero.
const solarNoiseThreshold = 0.02

var solarVariables = map[string]bool{
	"generationPower": true,
	"pvPower":         true,
}

// clampSolarNoise zeroes near-zero readings on the two solar
// generation channels; other variables pass through untouched.
func clampSolarNoise(variable string, value float64) float64 {
	if solarVariables[variable] && value <= solarNoiseThreshold {
		return 0
	}
	return value
}

// summary is the default power-flow view composed from the well-known
// variables. Flows are signed: positive grid flow is import, positive
// battery flow is charging.
type summary struct {
	Device          string  `json:"device"`
	GenerationPower float64 `json:"generationPower"`
	PVPower         float64 `json:"pvPower"`
	LoadsPower      float64 `json:"loadsPower"`
	GridFlow        float64 `json:"gridFlow"`
	HasBattery      bool    `json:"hasBattery"`
	BatteryFlow     float64 `json:"batteryFlow"`
	SoC             float64 `json:"soc"`
}

func buildSummary(device foxess.Device, points foxess.Realtime) summary {
	return summary{
		Device:          device.StationName,
		GenerationPower: clampSolarNoise("generationPower", points.FloatOrZero("generationPower")),
		PVPower:         clampSolarNoise("pvPower", points.FloatOrZero("pvPower")),
		LoadsPower:      points.FloatOrZero("loadsPower"),
		GridFlow:        points.FloatOrZero("gridConsumptionPower") - points.FloatOrZero("feedinPower"),
		HasBattery:      device.HasBattery,
		BatteryFlow:     points.FloatOrZero("batChargePower") - points.FloatOrZero("batDischargePower"),
		SoC:             points.FloatOrZero("SoC"),
	}
}
