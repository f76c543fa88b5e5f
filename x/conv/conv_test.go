package conv

import (
	"math"
	"testing"
)

func TestUtoa(t *testing.T) {
	var buf [20]byte
	for _, c := range []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{115200, "115200"},
		{math.MaxUint64, "18446744073709551615"},
	} {
		if got := string(Utoa(buf[:], c.in)); got != c.want {
			t.Errorf("Utoa(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestItoa(t *testing.T) {
	var buf [21]byte
	for _, c := range []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{-1, "-1"},
		{-23450, "-23450"},
		{math.MinInt64, "-9223372036854775808"},
	} {
		if got := string(Itoa(buf[:], c.in)); got != c.want {
			t.Errorf("Itoa(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPadLeft(t *testing.T) {
	var dst [5]byte
	if got := string(PadLeft(dst[:], []byte("42"), ' ')); got != "   42" {
		t.Fatalf("PadLeft = %q", got)
	}
	if got := string(PadLeft(dst[:], []byte("1234567"), ' ')); got != "34567" {
		t.Fatalf("PadLeft overflow = %q", got)
	}
}
