package main

import (
	"testing"

	"github.com/foxtools/foxessctl/internal/foxess"
)

func TestClampSolarNoise(t *testing.T) {
	tests := []struct {
		variable string
		value    float64
		want     float64
	}{
		{"generationPower", 0.01, 0},
		{"generationPower", 0.02, 0},
		{"generationPower", 0.03, 0.03},
		{"generationPower", -0.5, 0},
		{"pvPower", 0.02, 0},
		{"pvPower", 1.5, 1.5},
		// clamp applies only to the solar channels
		{"loadsPower", 0.01, 0.01},
		{"feedinPower", 0.02, 0.02},
	}

	for _, tt := range tests {
		if got := clampSolarNoise(tt.variable, tt.value); got != tt.want {
			t.Errorf("clampSolarNoise(%q, %v) = %v, want %v", tt.variable, tt.value, got, tt.want)
		}
	}
}

func TestBuildSummaryBatterySystem(t *testing.T) {
	device := foxess.Device{
		SerialNumber: "SN001",
		StationName:  "Home",
		HasBattery:   true,
	}
	points := foxess.Realtime{
		{Variable: "generationPower", Value: foxess.NumberValue(0.01), Unit: "kW"},
		{Variable: "loadsPower", Value: foxess.NumberValue(500), Unit: "kW"},
		{Variable: "batChargePower", Value: foxess.NumberValue(100), Unit: "kW"},
		{Variable: "batDischargePower", Value: foxess.NumberValue(0), Unit: "kW"},
		{Variable: "SoC", Value: foxess.NumberValue(80), Unit: "%"},
	}

	s := buildSummary(device, points)

	if s.Device != "Home" {
		t.Errorf("Device = %q, want Home", s.Device)
	}
	if s.GenerationPower != 0 {
		t.Errorf("GenerationPower = %v, want 0 (clamped below noise threshold)", s.GenerationPower)
	}
	if s.LoadsPower != 500 {
		t.Errorf("LoadsPower = %v, want 500", s.LoadsPower)
	}
	if !s.HasBattery {
		t.Error("HasBattery = false, want true")
	}
	if s.BatteryFlow != 100 {
		t.Errorf("BatteryFlow = %v, want +100 (charging)", s.BatteryFlow)
	}
	if s.SoC != 80 {
		t.Errorf("SoC = %v, want 80", s.SoC)
	}
}

func TestBuildSummaryGridFlow(t *testing.T) {
	device := foxess.Device{StationName: "Home"}

	importing := foxess.Realtime{
		{Variable: "gridConsumptionPower", Value: foxess.NumberValue(1.2)},
		{Variable: "feedinPower", Value: foxess.NumberValue(0.2)},
	}
	if got := buildSummary(device, importing).GridFlow; got != 1.0 {
		t.Errorf("GridFlow = %v, want +1.0 (import)", got)
	}

	exporting := foxess.Realtime{
		{Variable: "gridConsumptionPower", Value: foxess.NumberValue(0)},
		{Variable: "feedinPower", Value: foxess.NumberValue(2.5)},
	}
	if got := buildSummary(device, exporting).GridFlow; got != -2.5 {
		t.Errorf("GridFlow = %v, want -2.5 (export)", got)
	}
}

func TestBuildSummaryMissingVariables(t *testing.T) {
	s := buildSummary(foxess.Device{StationName: "Home"}, foxess.Realtime{})
	if s.GenerationPower != 0 || s.GridFlow != 0 || s.BatteryFlow != 0 || s.SoC != 0 {
		t.Errorf("missing variables should read as zero: %+v", s)
	}
}
