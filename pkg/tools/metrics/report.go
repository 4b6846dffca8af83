package metrics

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

type Report struct {
	StartDate     time.Time
	EndDate       time.Time
	InitialEquity fixed.Point
	FinalEquity   fixed.Point

	TotalReturn      fixed.Point
	AnnualizedReturn fixed.Point
	MaxDrawdown      fixed.Point
	RecoveryFactor   fixed.Point

	TotalFills     int
	RoundTrips     int
	WinningTrades  int
	LosingTrades   int
	RejectedOrders int
	WinRate        fixed.Point
	Expectancy     fixed.Point
	ProfitFactor   fixed.Point
	AverageWin     fixed.Point
	AverageLoss    fixed.Point

	TotalCommission fixed.Point
	TotalStampDuty  fixed.Point

	SharpeRatio          fixed.Point
	SortinoRatio         fixed.Point
	AnnualizedVolatility fixed.Point
}

func (r Report) Print(logger *zap.Logger) {
	logger.Info("backtest report",
		zap.Time("start_date", r.StartDate),
		zap.Time("end_date", r.EndDate),
		zap.Stringer("initial_equity", r.InitialEquity),
		zap.Stringer("final_equity", r.FinalEquity),
		zap.String("total_return", fmt.Sprintf("%s%%", r.TotalReturn)),
		zap.String("annualized_return", fmt.Sprintf("%s%%", r.AnnualizedReturn)),
		zap.String("max_drawdown", fmt.Sprintf("%s%%", r.MaxDrawdown)),
		zap.Stringer("recovery_factor", r.RecoveryFactor))

	logger.Info("trade statistics",
		zap.Int("total_fills", r.TotalFills),
		zap.Int("round_trips", r.RoundTrips),
		zap.Int("winning_trades", r.WinningTrades),
		zap.Int("losing_trades", r.LosingTrades),
		zap.Int("rejected_orders", r.RejectedOrders),
		zap.String("win_rate", fmt.Sprintf("%s%%", r.WinRate)),
		zap.Stringer("expectancy", r.Expectancy),
		zap.Stringer("profit_factor", r.ProfitFactor),
		zap.Stringer("average_win", r.AverageWin),
		zap.Stringer("average_loss", r.AverageLoss))

	logger.Info("costs and risk",
		zap.Stringer("total_commission", r.TotalCommission),
		zap.Stringer("total_stamp_duty", r.TotalStampDuty),
		zap.Stringer("sharpe_ratio", r.SharpeRatio),
		zap.Stringer("sortino_ratio", r.SortinoRatio),
		zap.String("annualized_volatility", fmt.Sprintf("%s%%", r.AnnualizedVolatility)))
}
