// Package metrics turns the event stream of a finished backtest into a
// performance report: the equity curve drives return and risk figures, the
// fill log drives trade statistics and fee totals.
package metrics

import (
	"context"
	"time"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// Audit collects one equity snapshot per trading day plus every fill and
// rejection. Attach its handlers to the router and call GenerateReport after
// the run drains.
type Audit struct {
	equities   []common.Equity
	fills      []common.Fill
	rejections []common.OrderRejected
}

func NewAudit() *Audit {
	return &Audit{}
}

// OnEquity keeps the last equity value seen for each day, so intraday
// marks collapse into a daily close curve.
func (a *Audit) OnEquity(_ context.Context, equity common.Equity) {
	day := equity.TimeStamp.Truncate(24 * time.Hour)
	if n := len(a.equities); n > 0 && a.equities[n-1].TimeStamp.Truncate(24*time.Hour).Equal(day) {
		a.equities[n-1] = equity
		return
	}
	a.equities = append(a.equities, equity)
}

func (a *Audit) OnOrderFilled(_ context.Context, fill common.Fill) {
	a.fills = append(a.fills, fill)
}

func (a *Audit) OnOrderRejected(_ context.Context, rejection common.OrderRejected) {
	a.rejections = append(a.rejections, rejection)
}

func (a *Audit) GenerateReport() Report {
	report := Report{}
	if len(a.equities) == 0 {
		return report
	}

	report.StartDate = a.equities[0].TimeStamp
	report.EndDate = a.equities[len(a.equities)-1].TimeStamp
	report.InitialEquity = a.equities[0].Value
	report.FinalEquity = a.equities[len(a.equities)-1].Value

	report.TotalReturn = report.FinalEquity.Div(report.InitialEquity).Sub(fixed.One).MulInt64(100).Rescale(2)

	auditedDays := a.dayCount()
	if auditedDays > 0 && report.InitialEquity.Gt(fixed.Zero) && report.FinalEquity.Gt(fixed.Zero) {
		ratio := report.FinalEquity.Div(report.InitialEquity)
		exponent := fixed.FromInt64(36500, 2).DivInt64(int64(auditedDays))
		report.AnnualizedReturn = ratio.Pow(exponent).Sub(fixed.One).MulInt64(100).Rescale(2)
	}

	maxEquity := report.InitialEquity
	for _, eq := range a.equities {
		if eq.Value.Gt(maxEquity) {
			maxEquity = eq.Value
		}
		drawdown := maxEquity.Sub(eq.Value).Div(maxEquity)
		if drawdown.Gt(report.MaxDrawdown) {
			report.MaxDrawdown = drawdown
		}
	}

	a.tradeStatistics(&report)

	if report.MaxDrawdown.Gt(fixed.Zero) {
		report.RecoveryFactor = report.TotalReturn.Div(report.MaxDrawdown.MulInt64(100))
	}
	report.MaxDrawdown = report.MaxDrawdown.MulInt64(100).Rescale(2)

	dailyReturns := a.dailyReturns()
	meanReturn := fixed.Mean(dailyReturns)
	vol := fixed.StdDev(dailyReturns, meanReturn)

	if !meanReturn.IsZero() && !vol.IsZero() {
		report.AnnualizedVolatility = vol.Mul(fixed.Sqrt252).MulInt64(100).Rescale(2)
		report.SharpeRatio = fixed.SharpeRatio(dailyReturns, fixed.Zero).Mul(fixed.Sqrt252).Rescale(5)
		report.SortinoRatio = fixed.SortinoRatio(dailyReturns, fixed.Zero).Mul(fixed.Sqrt252).Rescale(5)
	}

	return report
}

// tradeStatistics treats each sell fill as one closed round trip; its
// RealizedPnL already nets out fees and FIFO cost basis.
func (a *Audit) tradeStatistics(report *Report) {
	var totalProfit, totalLoss fixed.Point

	report.TotalFills = len(a.fills)
	report.RejectedOrders = len(a.rejections)

	for _, fill := range a.fills {
		report.TotalCommission = report.TotalCommission.Add(fill.Commission)
		report.TotalStampDuty = report.TotalStampDuty.Add(fill.StampDuty)

		if fill.Side != common.OrderSideSell {
			continue
		}
		report.RoundTrips++
		if fill.RealizedPnL.Gt(fixed.Zero) {
			totalProfit = totalProfit.Add(fill.RealizedPnL)
			report.WinningTrades++
		} else {
			totalLoss = totalLoss.Add(fill.RealizedPnL.Neg())
			report.LosingTrades++
		}
	}

	if report.WinningTrades > 0 {
		report.AverageWin = totalProfit.DivInt64(int64(report.WinningTrades))
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = totalLoss.DivInt64(int64(report.LosingTrades))
	}
	if totalLoss.Gt(fixed.Zero) {
		report.ProfitFactor = totalProfit.Div(totalLoss)
	}
	if report.RoundTrips > 0 {
		report.Expectancy = totalProfit.Sub(totalLoss).DivInt64(int64(report.RoundTrips))
		report.WinRate = fixed.FromInt64(int64(report.WinningTrades), 0).
			DivInt64(int64(report.RoundTrips)).MulInt64(100).Rescale(2)
	}
}

func (a *Audit) dayCount() int {
	if len(a.equities) < 2 {
		return 1
	}
	start := a.equities[0].TimeStamp
	end := a.equities[len(a.equities)-1].TimeStamp
	return int(end.Sub(start).Hours()/24) + 1
}

func (a *Audit) dailyReturns() []fixed.Point {
	var dailyReturns []fixed.Point

	for i := 1; i < len(a.equities); i++ {
		prev := a.equities[i-1].Value
		if prev.IsZero() {
			continue
		}
		dailyReturns = append(dailyReturns, a.equities[i].Value.Div(prev).Sub(fixed.One))
	}
	return dailyReturns
}
