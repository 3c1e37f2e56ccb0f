// Package app assembles the agent and its collaborators from a config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/agent"
	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/config"
	"github.com/rustyeddy/signaltrader/feed"
	"github.com/rustyeddy/signaltrader/journal"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/metrics"
	"github.com/rustyeddy/signaltrader/oanda"
	"github.com/rustyeddy/signaltrader/predict"
	"github.com/rustyeddy/signaltrader/signals"
	"github.com/rustyeddy/signaltrader/sim"
	"github.com/rustyeddy/signaltrader/strategies"
)

type App struct {
	Agent    *agent.Agent
	Feed     feed.Feed
	Paper    *sim.Engine // nil unless the paper broker is used
	Journal  journal.Journal
	Registry *prometheus.Registry

	metricsAddr string
	log         *zap.Logger
}

// Build wires every component named by cfg. The caller must Close the
// returned App.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Registry:    reg,
		metricsAddr: cfg.Metrics.Addr,
		log:         log,
	}

	var oc *oanda.Client
	if cfg.Broker.Type == "oanda" || cfg.Feed.Type == "oanda" || cfg.Bars.Type == "oanda" {
		oc, err = oanda.NewClient(cfg.OANDA.Environment, cfg.OANDA.Token, cfg.OANDA.AccountID, log)
		if err != nil {
			return nil, err
		}
	}

	var bars signals.BarSource
	switch cfg.Bars.Type {
	case "csv":
		bars, err = feed.LoadCSVBars(cfg.Bars.File)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
	case "oanda":
		bars = oc
	}

	var brk broker.Broker
	switch cfg.Broker.Type {
	case "oanda":
		brk = oc
	default:
		a.Paper = sim.NewEngine(sim.Account{
			ID:       "paper",
			Currency: cfg.Broker.Currency,
			Balance:  cfg.Broker.Balance,
		}, log)
		brk = a.Paper
	}

	switch cfg.Feed.Type {
	case "websocket":
		a.Feed = feed.NewWebSocket(cfg.Feed.URL, log)
	case "oanda":
		a.Feed = oanda.PricingFeed{Client: oc, Instruments: []string{cfg.Agent.Instrument}}
	default:
		a.Feed = feed.NewCSVTicks(cfg.Feed.File)
	}

	modeName, err := strategies.ParseModeName(cfg.Agent.Mode)
	if err != nil {
		return nil, err
	}

	deps := strategies.Deps{Log: log}
	switch modeName {
	case strategies.Collect:
		a.Journal, err = OpenJournal(ctx, cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		deps.Journal = a.Journal
	case strategies.Trade:
		deps.Predictor = predict.NewClient(cfg.Predict.URL, cfg.PredictTimeout())
	}

	mode, err := strategies.New(modeName, deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	ag, err := agent.New(agent.Options{
		Instrument: cfg.Agent.Instrument,
		Units:      cfg.Agent.Units,
		Location:   loc,
		Entry:      agent.EntryPolicy(cfg.Agent.Entry),
		Lookback:   cfg.LookbackDuration(),
		Bars:       bars,
		Broker:     brk,
		Mode:       mode,
		Metrics:    metrics.New(reg),
		Log:        log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Agent = ag

	return a, nil
}

// OpenJournal opens the sink selected by cfg.
func OpenJournal(ctx context.Context, cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "redis":
		return journal.NewRedis(ctx, cfg.RedisAddr, cfg.RedisStream)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// Run feeds ticks to the agent until the feed ends or ctx is done. A
// failed trade action is logged and the feed continues.
func (a *App) Run(ctx context.Context) error {
	if a.metricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, a.metricsAddr, metrics.Router(a.Registry)); err != nil {
				a.log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	err := a.Feed.Run(ctx, a.handle)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if a.Paper != nil {
		acct := a.Paper.Account()
		a.log.Info("paper account", zap.String("currency", acct.Currency), zap.Float64("balance", acct.Balance))
	}
	return err
}

func (a *App) handle(ctx context.Context, tick market.Tick) error {
	if a.Paper != nil {
		a.Paper.UpdatePrice(tick)
	}
	if err := a.Agent.OnTick(ctx, tick); err != nil {
		a.log.Warn("trade action skipped", zap.Time("tick", tick.Time), zap.Error(err))
	}
	return nil
}

func (a *App) Close() error {
	if a.Journal != nil {
		return a.Journal.Close()
	}
	return nil
}
