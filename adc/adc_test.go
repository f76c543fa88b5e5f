package adc

import "testing"

func TestMilliVoltsSupplyDiv3(t *testing.T) {
	ch := DefaultConfig().Channels[ChanSupply]
	// Full scale on a /3 input against 1.25 V is 3.75 V.
	if got := MilliVolts(4095, ch); got != 3750 {
		t.Fatalf("full scale = %d mV", got)
	}
	// 3.0 V supply -> 1.0 V at the ADC -> 4095*1000/1250 = 3276.
	if got := MilliVolts(3276, ch); got < 2998 || got > 3000 {
		t.Fatalf("3.0 V supply read back as %d mV", got)
	}
}

func TestChannelFullScale(t *testing.T) {
	if got := (Channel{Bits: 12}).FullScale(); got != 4095 {
		t.Fatalf("12-bit full scale = %d", got)
	}
	if got := (Channel{}).FullScale(); got != 0xFFFF {
		t.Fatalf("default full scale = %d", got)
	}
}

func TestGeneralChannelHasNoDivider(t *testing.T) {
	ch := DefaultConfig().Channels[ChanGeneral]
	if ch.Divider() != 1 {
		t.Fatalf("general channel divider = %d", ch.Divider())
	}
	if got := MilliVolts(4095, ch); got != 1250 {
		t.Fatalf("general full scale = %d mV", got)
	}
}
