package synthetic

import (
	"log/slog"
	"math/rand"
	"time"
)

// NewAShareBarGenerator builds a generator with parameters typical for a
// liquid A-share: a 10 CNY start price and retail-scale daily volume.
func NewAShareBarGenerator(symbol string, rng *rand.Rand, startDay time.Time, tradingDays int64, mu, sigma float64) *BarGenerator {

	const (
		startPrice = 10.00

		avgDailyVolume    = 5_000_000
		volumeVariability = 0.6
	)

	generator := NewBarGenerator(symbol, rng, startDay, startPrice, mu, sigma, tradingDays)
	generator.SetVolumeParameters(avgDailyVolume, volumeVariability)

	slog.Debug("synthetic bar generator configuration",
		"symbol", symbol,
		"trading_days", tradingDays,
		"mu_annual", mu,
		"sigma_annual", sigma,
		"start_price", startPrice,
		"start_day", startDay,
	)

	return generator
}
