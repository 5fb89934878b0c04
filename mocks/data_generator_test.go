package mocks

import (
	"testing"
)

func TestDataGenerator_GenerateBars(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	bars := gen.GenerateBars(config)

	if len(bars) != 100 {
		t.Errorf("expected 100 bars, got %d", len(bars))
	}

	for i, bar := range bars {
		if bar.PriceHigh < bar.PriceOpen || bar.PriceHigh < bar.PriceClose {
			t.Errorf("bar %d: high %d below open %d or close %d", i, bar.PriceHigh, bar.PriceOpen, bar.PriceClose)
		}
		if bar.PriceLow > bar.PriceOpen || bar.PriceLow > bar.PriceClose {
			t.Errorf("bar %d: low %d above open %d or close %d", i, bar.PriceLow, bar.PriceOpen, bar.PriceClose)
		}
		if bar.VolumeLots <= 0 {
			t.Errorf("bar %d: non-positive volume %d", i, bar.VolumeLots)
		}
		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			t.Errorf("bar %d: timestamp %v not after previous %v", i, bar.Time, bars[i-1].Time)
		}
	}
}

func TestDataGenerator_GenerateBars_Reproducible(t *testing.T) {
	config := DefaultConfig()

	a := NewDataGenerator(7).GenerateBars(config)
	b := NewDataGenerator(7).GenerateBars(config)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs between runs with the same seed", i)
		}
	}
}

func TestDataGenerator_GenerateFactors(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 60

	factors := gen.GenerateFactors(config, 3, 2.5)

	if len(factors) != 60 {
		t.Fatalf("expected 60 factor rows, got %d", len(factors))
	}

	for i := 1; i < len(factors); i++ {
		if factors[i].RawFactor < factors[i-1].RawFactor {
			t.Errorf("factor %d decreased: %f < %f", i, factors[i].RawFactor, factors[i-1].RawFactor)
		}
	}

	last := factors[len(factors)-1]
	if last.RawFactor != 2.5 {
		t.Errorf("expected final factor 2.5, got %f", last.RawFactor)
	}
	if last.Date.Hour() != 0 || last.Date.Minute() != 0 {
		t.Errorf("factor date not truncated to midnight: %v", last.Date)
	}
}

func TestDataGenerator_GenerateUniverse(t *testing.T) {
	gen := NewDataGenerator(1)

	instruments := gen.GenerateUniverse(4)

	if len(instruments) != 4 {
		t.Fatalf("expected 4 instruments, got %d", len(instruments))
	}
	if instruments[0] != "600000.SH" || instruments[1] != "600001.SZ" {
		t.Errorf("unexpected instrument identifiers: %v", instruments)
	}
}
