package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/foxtools/foxessctl/internal/foxess"
)

type outputMode struct {
	json bool
}

func (o outputMode) printJSON(value any) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal("format json", err)
	}
	fmt.Println(string(data))
}

func (o outputMode) testResult(valid bool, message string) {
	if o.json {
		o.printJSON(map[string]bool{"valid": valid})
		return
	}
	fmt.Println(message)
}

func (o outputMode) summary(s summary, decimals int) {
	if o.json {
		o.printJSON(s)
		return
	}

	fmt.Printf("Device: %s\n", s.Device)
	fmt.Printf("generationPower: %s\n", formatPower(s.GenerationPower, decimals))
	fmt.Printf("pvPower: %s\n", formatPower(s.PVPower, decimals))
	fmt.Printf("loadsPower: %s\n", formatPower(s.LoadsPower, decimals))

	gridDirection := "export"
	if s.GridFlow > 0 {
		gridDirection = "import"
	}
	fmt.Printf("Grid: %s %s\n", formatPower(math.Abs(s.GridFlow), decimals), gridDirection)

	if s.HasBattery {
		batteryDirection := "discharging"
		if s.BatteryFlow > 0 {
			batteryDirection = "charging"
		}
		fmt.Printf("Battery: %s %s\n", formatPower(math.Abs(s.BatteryFlow), decimals), batteryDirection)
		fmt.Printf("SoC: %s%%\n", formatDecimal(s.SoC, decimals))
	}
}

func (o outputMode) dumpAll(points foxess.Realtime, decimals int) {
	if o.json {
		o.printJSON(points)
		return
	}

	fmt.Println("Available variables:")
	for _, point := range points {
		display := point.Value.Display()
		if value, ok := point.Value.Float(); ok {
			display = formatDecimal(clampSolarNoise(point.Variable, value), decimals)
		}
		fmt.Printf("  %s: %s %s\n", point.Variable, display, points.Unit(point.Variable))
	}
}

func (o outputMode) variables(points foxess.Realtime, requested []string, decimals int) {
	if o.json {
		result := make(map[string]any, len(requested))
		for _, variable := range requested {
			point, ok := points.Lookup(variable)
			if !ok {
				result[variable] = nil
				continue
			}
			result[variable] = map[string]any{
				"value": point.Value,
				"unit":  points.Unit(variable),
				"name":  point.Name,
			}
		}
		o.printJSON(result)
		return
	}

	for _, variable := range requested {
		point, ok := points.Lookup(variable)
		if !ok {
			fmt.Printf("%s: Not available\n", variable)
			continue
		}
		if value, valueOK := point.Value.Float(); valueOK {
			fmt.Printf("%s: %s %s\n", variable, formatDecimal(clampSolarNoise(point.Variable, value), decimals), points.Unit(variable))
			continue
		}
		fmt.Printf("%s: %s\n", variable, point.Value.Display())
	}
}

// formatDecimal renders a number with at most the requested decimal
// places, trimming trailing zeros ("0.50" -> "0.5", "0.00" -> "0").
func formatDecimal(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	return formatted
}

func formatPower(value float64, decimals int) string {
	return formatDecimal(value, decimals) + " kW"
}
