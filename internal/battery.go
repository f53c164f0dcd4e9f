package internal

import "math"

// Cells in the battery pack. The voltage column is the pack voltage.
const BatteryCells = 4

// Per-cell voltage to state of charge, measured on the pack.
var chargeCurve = []struct {
	Volts   float64
	Percent float64
}{
	{3.0, 0.0},
	{3.1, 0.8},
	{3.2, 1.2},
	{3.3, 2.0},
	{3.4, 4.0},
	{3.5, 12.0},
	{3.6, 20.0},
	{3.7, 33.0},
	{3.8, 59.0},
	{3.9, 73.0},
	{4.0, 85.0},
	{4.1, 96.0},
	{4.2, 100.0},
	{4.25, 105.0},
	{4.3, 110.0},
}

// BatteryPercent interpolates the state of charge for a cell voltage, rounded
// to a tenth of a percent. Voltages outside the curve have no reading.
func BatteryPercent(cellVolts float64) (float64, bool) {
	for i := 1; i < len(chargeCurve); i++ {
		lo, hi := chargeCurve[i-1], chargeCurve[i]
		if hi.Volts < cellVolts {
			continue
		}
		if cellVolts < lo.Volts {
			return 0, false
		}
		pct := (cellVolts - lo.Volts) / (hi.Volts - lo.Volts)
		return math.Round((pct*(hi.Percent-lo.Percent)+lo.Percent)*10) / 10, true
	}
	return 0, false
}

// PackPercent is BatteryPercent for the whole pack voltage.
func PackPercent(packVolts float64) (float64, bool) {
	return BatteryPercent(packVolts / BatteryCells)
}
