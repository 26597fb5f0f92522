package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/backend"
	"moneytracker/internal/cli"
	"moneytracker/internal/command"
	"moneytracker/internal/config"
	"moneytracker/internal/console"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
	"moneytracker/internal/shell"
)

const shutdownTimeout = 30 * time.Second

// app is one loaded ledger with its persistence and event wiring.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *backend.BackendResult
	service *services.LedgerService
}

func loadConfig(g *Globals) (*config.Config, *log.Logger, error) {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.SetupLogger(os.Stderr, cfg.LogLevel, g.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// open loads the configured backend into a ledger service.
func open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		return nil, err
	}

	snap, err := store.Backend.Load(ctx)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("Failed to release backend", log.FieldError, cerr)
		}
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithReportCache(services.NewReportCache(cfg.ReportCacheSize, cfg.ReportCacheTTL)),
	}
	if store.Events != nil {
		opts = append(opts, services.WithEvents(store.Events))
	}
	svc := services.NewLedgerService(ledger.FromSnapshot(snap), store.Backend, opts...)

	logger.Info("Ledger loaded",
		log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend,
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories))

	return &app{cfg: cfg, logger: logger, store: store, service: svc}, nil
}

// close saves the ledger and releases the backend. It runs on a fresh
// context so an interrupted session is still saved.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.service.Save(ctx); err != nil {
		a.logger.Error("Failed to save ledger", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to release backend", log.FieldError, err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *app) shell() *shell.Shell {
	return shell.New(os.Stdin,
		console.New(os.Stdout, a.cfg.NoColor),
		command.NewInterpreter(),
		a.service,
		shell.WithLogger(a.logger))
}

type shellCmd struct{}

func (c *shellCmd) Run(g *Globals) error {
	a, ctx, stop, err := start(g)
	if err != nil {
		return err
	}
	defer stop()

	runErr := a.shell().Run(ctx)
	return errors.Join(runErr, a.close())
}

type execCmd struct {
	Line []string `arg:"" passthrough:"" help:"Command line to run, e.g. addi a30/cSALARY."`
}

func (c *execCmd) Run(g *Globals) error {
	a, ctx, stop, err := start(g)
	if err != nil {
		return err
	}
	defer stop()

	a.shell().RunLine(ctx, strings.Join(c.Line, " "))
	return a.close()
}

func start(g *Globals) (*app, context.Context, context.CancelFunc, error) {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, stop := cli.SignalContext(context.Background(), logger)
	a, err := open(ctx, cfg, logger)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	return a, ctx, stop, nil
}

type eventsCmd struct{}

func (c *eventsCmd) Run(g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	if !cfg.EventsEnabled() {
		return errors.New("ledger events are disabled: set AMQP_URL")
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	client, err := amqp.NewClient(ctx, amqp.Config{
		URL:            cfg.AMQPURL,
		Exchange:       cfg.AMQPExchange,
		RoutingKey:     cfg.AMQPRoutingKey,
		ConnectTimeout: cfg.AMQPConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Consume(ctx, func(e *amqp.LedgerEvent) error {
		_, werr := fmt.Fprintln(os.Stdout, console.FormatEvent(e))
		return werr
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
