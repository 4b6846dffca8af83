// Package synthetic generates daily OHLCV bars from a geometric Brownian
// motion, for examples and tests that need a market without an archive file.
package synthetic

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

const (
	barGeneratorComponentName = "datasource.synthetic.generator"

	tradingDaysPerYear = 252
	priceDigits        = 2
)

var ErrEof = errors.New("EOF")

// BarGenerator produces one weekday bar per GetNext call. Closes follow a GBM
// with annualized drift mu and volatility sigma; open, high and low are
// derived from the close path with bounded intraday noise. Prices are quoted
// to fen like real A-share data.
type BarGenerator struct {
	symbol string
	rng    *rand.Rand

	mu    float64
	sigma float64

	day       time.Time
	lastClose float64
	steps     int64
	t         int64

	avgVolume      float64
	volumeVariance float64
	intradayRange  float64
}

func NewBarGenerator(symbol string, rng *rand.Rand, startDay time.Time, startPrice float64, mu, sigma float64, steps int64) *BarGenerator {
	return &BarGenerator{
		symbol: symbol,
		rng:    rng,

		mu:    mu,
		sigma: sigma,

		day:       nextTradingDay(startDay.UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)),
		lastClose: startPrice,
		steps:     steps,

		avgVolume:      1_000_000,
		volumeVariance: 0.5,
		intradayRange:  0.4,
	}
}

func (g *BarGenerator) SetVolumeParameters(avgVolume, variance float64) {
	g.avgVolume = avgVolume
	g.volumeVariance = variance
}

func (g *BarGenerator) GetNext() (common.Bar, error) {
	var bar common.Bar

	if g.t >= g.steps {
		return bar, ErrEof
	}
	g.t++

	dt := 1.0 / tradingDaysPerYear
	z := g.rng.NormFloat64()
	deltaLog := (g.mu-0.5*g.sigma*g.sigma)*dt + g.sigma*math.Sqrt(dt)*z

	open := g.lastClose
	close := open * math.Exp(deltaLog)
	g.lastClose = close

	// Intraday extremes as a fraction of the daily move plus noise.
	span := math.Abs(close-open) + open*g.sigma*math.Sqrt(dt)*g.intradayRange*math.Abs(g.rng.NormFloat64())
	high := math.Max(open, close) + span*g.rng.Float64()*0.5
	low := math.Min(open, close) - span*g.rng.Float64()*0.5
	if low <= 0 {
		low = math.Min(open, close) * 0.99
	}

	volume := g.avgVolume * math.Exp(g.rng.NormFloat64()*g.volumeVariance)

	bar.Day = g.day
	bar.Open = fixed.FromFloat64(open).Rescale(priceDigits)
	bar.High = fixed.FromFloat64(high).Rescale(priceDigits)
	bar.Low = fixed.FromFloat64(low).Rescale(priceDigits)
	bar.Close = fixed.FromFloat64(close).Rescale(priceDigits)
	bar.Volume = fixed.FromFloat64(math.Floor(volume))

	bar.Source = barGeneratorComponentName
	bar.Symbol = g.symbol
	bar.ExecutionId = utility.GetExecutionID()
	bar.TraceID = utility.CreateTraceID()

	g.day = nextTradingDay(g.day)

	return bar, nil
}

// nextTradingDay steps one calendar day forward, skipping weekends. Exchange
// holidays are not modelled.
func nextTradingDay(day time.Time) time.Time {
	day = day.AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
