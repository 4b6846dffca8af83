package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linqiao-quant/ashare/pkg/broker"
	"github.com/linqiao-quant/ashare/pkg/broker/fees"
	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/config"
	"github.com/linqiao-quant/ashare/pkg/data/duckdb"
	"github.com/linqiao-quant/ashare/pkg/datasource"
	"github.com/linqiao-quant/ashare/pkg/datasource/historical"
	"github.com/linqiao-quant/ashare/pkg/datasource/synthetic"
	"github.com/linqiao-quant/ashare/pkg/middleware"
	"github.com/linqiao-quant/ashare/pkg/strategy"
	"github.com/linqiao-quant/ashare/pkg/tools/metrics"
	"github.com/linqiao-quant/ashare/pkg/tools/store"
	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

type advisor interface {
	OnBar(context.Context, common.Bar)
	OnOrderFilled(context.Context, common.Fill)
	OnOrderRejected(context.Context, common.OrderRejected)
}

// memorySource feeds pre-loaded bars, used for the duckdb archive whose
// reader pushes rows instead of pulling them.
type memorySource struct {
	bars []common.Bar
	idx  int
}

func (m *memorySource) GetNext() (common.Bar, error) {
	if m.idx >= len(m.bars) {
		return common.Bar{}, historical.ErrEof
	}
	bar := m.bars[m.idx]
	m.idx++
	return bar, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	strategyName := flag.String("strategy", "sma", "strategy to run: sma or rsi")
	synth := flag.Bool("synthetic", false, "run against generated bars instead of an archive")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("unable to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	router := bus.NewRouter(routerEventCapacity)

	simulator := broker.NewSimulator(router, fixed.FromFloat64(cfg.Backtest.InitialCash),
		broker.WithLotSize(cfg.Backtest.LotSize),
		broker.WithFeeSchedule(fees.Schedule{
			CommissionRate: fixed.FromFloat64(cfg.Fees.CommissionRate),
			StampDutyRate:  fixed.FromFloat64(cfg.Fees.StampDutyRate),
			MinCommission:  fixed.FromFloat64(cfg.Fees.MinCommission),
		}))

	strat, err := buildStrategy(*strategyName, router, cfg.Backtest.Symbol)
	if err != nil {
		logger.Fatal("unable to build strategy", zap.Error(err))
	}

	source, cleanup, err := buildSource(ctx, cfg, *synth)
	if err != nil {
		logger.Fatal("unable to build data source", zap.Error(err))
	}
	defer cleanup()

	audit := metrics.NewAudit()
	monitor := middleware.NewMonitor(middleware.MonitorRejections)

	fillHandlers := []bus.EventHandler[common.Fill]{strat.OnOrderFilled, audit.OnOrderFilled}
	equityHandlers := []bus.EventHandler[common.Equity]{audit.OnEquity}

	var runStore *store.RunStore
	if cfg.Storage.ResultDBPath != "" {
		runStore, err = store.NewRunStore(cfg.Storage.ResultDBPath, utility.GetExecutionID().String())
		if err != nil {
			logger.Fatal("unable to open result store", zap.Error(err))
		}
		defer func() {
			_ = runStore.Close()
		}()
		fillHandlers = append(fillHandlers, runStore.OnOrderFilled)
		equityHandlers = append(equityHandlers, runStore.OnEquity)
	}

	router.BarHandler = bus.MergeHandlers(simulator.OnBar, strat.OnBar)
	router.OrderHandler = monitor.WithOrder(simulator.OnOrder)
	router.OrderFilledHandler = bus.MergeHandlers(fillHandlers...)
	router.OrderRejectedHandler = monitor.WithOrderRejected(
		bus.MergeHandlers(strat.OnOrderRejected, audit.OnOrderRejected))
	router.OrderCancelledHandler = middleware.NoopOrderCnclHdl
	router.CashHandler = middleware.NoopCashHdl
	router.EquityHandler = bus.MergeHandlers(equityHandlers...)

	go router.ExecLoop(ctx, datasource.CreateBarDispatcher(router, source))

	if err := <-router.Done(); err != nil {
		if !errors.Is(err, context.Canceled) &&
			!errors.Is(err, historical.ErrEof) &&
			!errors.Is(err, synthetic.ErrEof) {
			logger.Error("error during simulation", zap.Error(err))
		}
	}

	audit.GenerateReport().Print(logger)
	router.Statistics().Print()

	if runStore != nil {
		if err := runStore.Flush(context.Background()); err != nil {
			logger.Error("unable to persist run", zap.Error(err))
		}
	}
}

func buildStrategy(name string, router *bus.Router, symbol string) (advisor, error) {
	switch name {
	case "sma":
		return strategy.NewSmaCross(router, symbol, smaFastPeriod, smaSlowPeriod, fixed.FromFloat64(buyRatio))
	case "rsi":
		return strategy.NewRsi(router, symbol, rsiPeriod, fixed.FromFloat64(buyRatio))
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func buildSource(ctx context.Context, cfg *config.Config, synth bool) (datasource.BarSource, func(), error) {
	noop := func() {}

	from, err := cfg.FromDate()
	if err != nil {
		return nil, noop, err
	}
	to, err := cfg.ToDate()
	if err != nil {
		return nil, noop, err
	}

	if synth {
		days := int64(to.Sub(from).Hours()/24) * 5 / 7
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return synthetic.NewAShareBarGenerator(cfg.Backtest.Symbol, rng, from, days, 0.08, 0.25), noop, nil
	}

	if cfg.Storage.DuckDBPath != "" {
		reader := duckdb.NewReader(cfg.Storage.DuckDBPath)
		if err := reader.Connect(); err != nil {
			return nil, noop, err
		}
		defer reader.Close()

		src := &memorySource{}
		if err := reader.LoadBars(ctx, cfg.Backtest.Symbol, from, to, func(bar common.Bar) error {
			src.bars = append(src.bars, bar)
			return nil
		}); err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	}

	if cfg.Storage.BarArchivePath != "" {
		archive := historical.NewSource[historical.BinaryBar](cfg.Storage.BarArchivePath)
		if err := archive.Open(); err != nil {
			return nil, noop, err
		}
		return historical.NewBarReader(archive, cfg.Backtest.Symbol, from, to), archive.Close, nil
	}

	return nil, noop, errors.New("no data source configured: set storage.bar_archive_path or storage.duckdb_path, or pass -synthetic")
}
