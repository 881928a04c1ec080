// Command trader launches the execution runtime against a simulated venue.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"github.com/chadury2021/nautilus-trader-s/config"
	"github.com/chadury2021/nautilus-trader-s/internal/account"
	"github.com/chadury2021/nautilus-trader-s/internal/clock"
	"github.com/chadury2021/nautilus-trader-s/internal/codec"
	"github.com/chadury2021/nautilus-trader-s/internal/execution"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
	"github.com/chadury2021/nautilus-trader-s/internal/strategy"
	"github.com/chadury2021/nautilus-trader-s/internal/telemetry"
	"github.com/chadury2021/nautilus-trader-s/internal/transport"
	"github.com/chadury2021/nautilus-trader-s/internal/venue"
)

const (
	defaultConfigPath        = "config/trader.yaml"
	traderLoggerPrefix       = "trader "
	collateralTimerLabel     = "collateral-sync"
	collateralSyncInterval   = 30 * time.Second
	disconnectTimeout        = 10 * time.Second
	disposeTimeout           = 5 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

func main() {
	cfgPath := parseFlags()
	ctx, cancel := newSignalContext()
	defer cancel()

	logger := newTraderLogger()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	logger.Printf("configuration initialised: env=%s, trader=%s, codec=%s",
		cfg.Environment, cfg.Trader, cfg.Execution.Codec)

	telemetryProvider, err := initTelemetry(ctx, logger, cfg)
	if err != nil {
		logger.Fatalf("initialize telemetry: %v", err)
	}

	profiler, err := startProfiler(logger, cfg)
	if err != nil {
		logger.Fatalf("start profiler: %v", err)
	}

	wire := selectCodec(cfg.Execution.Codec)
	logger.Printf("wire codec: %s", wire.Name())

	liveClock := clock.NewLive()

	sim, err := buildVenue(cfg, wire, liveClock, logger)
	if err != nil {
		logger.Fatalf("initialise venue: %v", err)
	}

	registry := strategy.NewRegistry()
	if err := registry.Register(&logStrategy{id: "LOGGER-001", logger: logger}); err != nil {
		logger.Fatalf("register strategy: %v", err)
	}

	client, err := buildClient(cfg, wire, liveClock, sim, registry, logger)
	if err != nil {
		logger.Fatalf("initialise execution client: %v", err)
	}

	if err := client.Connect(ctx); err != nil {
		logger.Fatalf("connect execution client: %v", err)
	}
	logger.Printf("execution client connected: topic=%s", cfg.Endpoint.Topic)

	if err := startCollateralSync(liveClock, client, cfg.Trader, logger); err != nil {
		logger.Fatalf("schedule collateral sync: %v", err)
	}

	logger.Print("trader started; awaiting shutdown signal")
	<-ctx.Done()
	logger.Print("shutdown signal received, initiating graceful shutdown")

	shutdownStart := time.Now()
	performGracefulShutdown(logger, liveClock, client, telemetryProvider, profiler)
	logger.Printf("shutdown completed in %v", time.Since(shutdownStart))
}

func parseFlags() string {
	cfgPath := flag.String("config", "", fmt.Sprintf("Path to trader configuration file (default: %s)", defaultConfigPath))
	flag.Parse()
	if *cfgPath != "" {
		return *cfgPath
	}
	return filepath.Clean(defaultConfigPath)
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newTraderLogger() *log.Logger {
	return log.New(os.Stdout, traderLoggerPrefix, log.LstdFlags|log.Lmicroseconds)
}

func initTelemetry(ctx context.Context, logger *log.Logger, cfg config.Settings) (*telemetry.Provider, error) {
	telemetryCfg := telemetry.DefaultConfig()
	if cfg.Telemetry.OTLPEndpoint != "" {
		telemetryCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	if cfg.Telemetry.ServiceName != "" {
		telemetryCfg.ServiceName = cfg.Telemetry.ServiceName
	}
	telemetryCfg.Environment = string(cfg.Environment)

	provider, err := telemetry.NewProvider(ctx, telemetryCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry provider: %w", err)
	}

	if telemetryCfg.Enabled {
		logger.Printf("telemetry initialized: endpoint=%s, service=%s", telemetryCfg.OTLPEndpoint, telemetryCfg.ServiceName)
	} else {
		logger.Printf("telemetry disabled")
	}
	return provider, nil
}

func startProfiler(logger *log.Logger, cfg config.Settings) (*pyroscope.Profiler, error) {
	if !cfg.Profiling.Enabled {
		return nil, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "trader",
		ServerAddress:   cfg.Profiling.ServerAddress,
		Tags: map[string]string{
			"env":    string(cfg.Environment),
			"trader": cfg.Trader,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Printf("profiler started: server=%s", cfg.Profiling.ServerAddress)
	return profiler, nil
}

func selectCodec(name string) *codec.Codec {
	if name == config.CodecJSON {
		return codec.NewJSON()
	}
	return codec.NewMsgPack()
}

func buildVenue(cfg config.Settings, wire *codec.Codec, clk clock.Clock, logger *log.Logger) (*venue.Venue, error) {
	balance, marginBalance, marginAvailable, err := cfg.Account.Decimals()
	if err != nil {
		return nil, err
	}
	return venue.New(venue.Config{
		Currency:        cfg.Account.Currency,
		Balance:         balance,
		MarginBalance:   marginBalance,
		MarginAvailable: marginAvailable,
	}, wire, wire, wire, clk, logger), nil
}

func buildClient(cfg config.Settings, wire *codec.Codec, clk clock.Clock, sim *venue.Venue, registry *strategy.Registry, logger *log.Logger) (*execution.Client, error) {
	return execution.New(execution.Config{
		Endpoint: transport.Endpoint{
			Host:        cfg.Endpoint.Host,
			CommandPort: cfg.Endpoint.CommandPort,
			EventPort:   cfg.Endpoint.EventPort,
			Topic:       cfg.Endpoint.Topic,
		},
		QueueSize:         cfg.Execution.QueueSize,
		CommandsPerSecond: cfg.Execution.CommandsPerSecond,
	}, execution.Options{
		Clock:        clk,
		Commands:     wire,
		Events:       wire,
		Responses:    wire,
		Requests:     sim,
		Subscription: sim,
		Strategies:   registry,
		Account:      account.New(cfg.Trader),
		Portfolio:    account.NewPortfolio(),
		Logger:       logger,
	})
}

// startCollateralSync polls the venue account state on a repeating timer so
// the account stays current while no orders are in flight.
func startCollateralSync(clk clock.Clock, client *execution.Client, trader string, logger *log.Logger) error {
	return clk.SetTimer(collateralTimerLabel, collateralSyncInterval, clk.TimeNow(), time.Time{}, true,
		func(label string, at time.Time) {
			cmd := message.CollateralInquiry{Base: message.NewBase(at), Trader: trader}
			if err := client.ExecuteCommand(cmd); err != nil {
				logger.Printf("%s: execute collateral inquiry: %v", label, err)
			}
		})
}

func performGracefulShutdown(logger *log.Logger, clk clock.Clock, client *execution.Client, provider *telemetry.Provider, profiler *pyroscope.Profiler) {
	shutdownStep := func(name string, timeout time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Printf("shutdown: %s...", name)
		if err := fn(stepCtx); err != nil {
			logger.Printf("shutdown: %s failed: %v", name, err)
		} else {
			logger.Printf("shutdown: %s completed", name)
		}
	}

	logger.Print("shutdown: stopping timers")
	clk.StopAllTimers()

	shutdownStep("disconnecting execution client", disconnectTimeout, client.Disconnect)
	shutdownStep("disposing execution client", disposeTimeout, client.Dispose)
	shutdownStep("shutting down telemetry", telemetryShutdownTimeout, provider.Shutdown)

	if profiler != nil {
		logger.Print("shutdown: stopping profiler")
		if err := profiler.Stop(); err != nil {
			logger.Printf("shutdown: stopping profiler failed: %v", err)
		}
	}
}

// logStrategy is a minimal strategy that records every event it receives.
type logStrategy struct {
	id     string
	logger *log.Logger
}

func (s *logStrategy) ID() string { return s.id }

func (s *logStrategy) OnEvent(evt message.Event) {
	s.logger.Printf("strategy %s: event %T id=%s", s.id, evt, evt.MessageID())
}
