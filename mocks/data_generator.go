package mocks

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/quantex-lab/snapex/internal/types"
)

// DataGenerator generates realistic raw bar and adjustment-factor series for
// testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how raw market data is generated.
type GeneratorConfig struct {
	// Instrument is the instrument identifier (e.g. "600000.SH").
	Instrument string
	// StartTime is the beginning of the series.
	StartTime time.Time
	// Interval is the duration between bars.
	Interval time.Duration
	// Count is the number of bars to generate.
	Count int
	// InitialPriceMinor is the starting close in minor currency units.
	InitialPriceMinor int64
	// Volatility controls bar-to-bar price movement (0.01 = 1%).
	Volatility float64
	// VolumeBaseLots is the average volume per bar, in lots.
	VolumeBaseLots int64
}

// DefaultConfig returns a config generating one month of daily bars starting
// at ten currency units under the conventional thousandths storage scale.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Instrument:        "600000.SH",
		StartTime:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:          24 * time.Hour,
		Count:             22,
		InitialPriceMinor: 10000,
		Volatility:        0.02,
		VolumeBaseLots:    5000,
	}
}

// GenerateBars produces a random-walk series of raw bars in storage units.
func (g *DataGenerator) GenerateBars(config GeneratorConfig) []types.RawBar {
	bars := make([]types.RawBar, 0, config.Count)
	close := float64(config.InitialPriceMinor)

	for i := 0; i < config.Count; i++ {
		open := close
		close = open * (1 + g.rng.NormFloat64()*config.Volatility)
		high := math.Max(open, close) * (1 + math.Abs(g.rng.NormFloat64())*config.Volatility/2)
		low := math.Min(open, close) * (1 - math.Abs(g.rng.NormFloat64())*config.Volatility/2)
		volume := float64(config.VolumeBaseLots) * (0.5 + g.rng.Float64())

		ts := config.StartTime.Add(time.Duration(i) * config.Interval)
		bars = append(bars, types.RawBar{
			Time:       ts,
			Instrument: config.Instrument,
			PriceOpen:  int64(open),
			PriceHigh:  int64(high),
			PriceLow:   int64(low),
			PriceClose: int64(close),
			VolumeLots: int64(volume),
			// lots * avg minor price * 100 shares per lot
			AmountMinor: int64(volume * (open + close) / 2 * 100),
		})
	}

	return bars
}

// GenerateFactors produces a raw-factor series covering the same dates as the
// bars of config, with ratio corporate-action steps so the series is
// non-decreasing and ends at maxFactor.
func (g *DataGenerator) GenerateFactors(config GeneratorConfig, steps int, maxFactor float64) []types.AdjustmentFactor {
	if steps < 1 {
		steps = 1
	}

	factors := make([]types.AdjustmentFactor, 0, config.Count)
	factor := 1.0
	stepEvery := config.Count / steps
	if stepEvery < 1 {
		stepEvery = 1
	}
	growth := math.Pow(maxFactor, 1/float64(steps))

	for i := 0; i < config.Count; i++ {
		if i > 0 && i%stepEvery == 0 && factor*growth <= maxFactor {
			factor *= growth
		}

		ts := config.StartTime.Add(time.Duration(i) * config.Interval)
		factors = append(factors, types.AdjustmentFactor{
			Instrument: config.Instrument,
			Date:       types.DateOf(ts),
			RawFactor:  factor,
		})
	}

	if len(factors) > 0 {
		factors[len(factors)-1].RawFactor = maxFactor
	}

	return factors
}

// GenerateUniverse produces instrument identifiers in the SH/SZ convention.
func (g *DataGenerator) GenerateUniverse(count int) []string {
	instruments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		suffix := ".SH"
		if i%2 == 1 {
			suffix = ".SZ"
		}
		instruments = append(instruments, fmt.Sprintf("%06d%s", 600000+i, suffix))
	}

	return instruments
}
