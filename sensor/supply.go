package sensor

import "humitemp/adc"

// LowBatteryMilliVolts is the supply level below which the battery is
// reported low.
const LowBatteryMilliVolts = 2800

// SupplyMilliVolts converts a reference code taken on channel c into the
// supply voltage in millivolts.
func SupplyMilliVolts(raw uint16, c adc.Channel) uint32 {
	return adc.MilliVolts(raw, c)
}

// LowBattery reports whether mv is under threshold. A zero threshold
// disables the check.
func LowBattery(mv, threshold uint32) bool {
	return threshold != 0 && mv < threshold
}
