package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"netinventory/internal/adapter"
	"netinventory/internal/codec"
	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/logger"
	"netinventory/internal/repository/sqlite"
	"netinventory/internal/service"
)

// app holds the wired services for one command invocation
type app struct {
	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger
	clock   domain.Clock
	repo    *sqlite.Repository
	bus     *service.EventBus

	keyword      *service.KeywordStrategy // nil unless the keyword strategy is selected
	classifier   *service.Classifier
	organization *service.OrganizationService
	maintenance  *service.MaintenanceService

	out      io.Writer
	exporter codec.Exporter
}

// loadConfig resolves the config file and applies flag overrides
func loadConfig(g *globalFlags) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if g.configPath != "" {
		cfg, path, err = config.LoadFromPath(g.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}

	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
		cfg.Log.Debug = false
	}
	return cfg, path, nil
}

// openApp loads configuration, opens the database and syncs the organization
// catalog. Callers must Close the returned app.
func openApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, path, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewWithWriter(cfg.Log, nil)
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Debug().Str("path", path).Msg("configuration loaded")
	}

	exporter, err := codec.ForFormat(g.output)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		cfgPath:  path,
		log:      log,
		clock:    domain.SystemClock{},
		repo:     repo,
		bus:      service.NewEventBus(),
		out:      cmd.OutOrStdout(),
		exporter: exporter,
	}

	var strategy service.Strategy
	switch cfg.Classifier.Strategy {
	case config.StrategyIPRange:
		strategy = service.NewIPRangeStrategy(repo, cfg.Classifier.DeviceTypes)
	default:
		a.keyword = service.NewKeywordStrategy(repo, cfg.Classifier.DepartmentRules)
		strategy = a.keyword
	}

	a.classifier = service.NewClassifier(repo, strategy, cfg.Classifier.MaxReportedErrors, log, a.clock, a.bus)
	a.organization = service.NewOrganizationService(repo, log)
	a.maintenance = service.NewMaintenanceService(repo, service.RetentionPolicy{
		RecentWindow:       cfg.Maintenance.RecentWindow.Duration(),
		DiscoveryRetention: cfg.Maintenance.DiscoveryRetention.Duration(),
		HistoryRetention:   cfg.Maintenance.HistoryRetention.Duration(),
	}, log, a.clock, a.bus)

	if _, err := a.organization.Sync(cmd.Context(), cfg.Organization); err != nil {
		repo.Close()
		return nil, fmt.Errorf("sync organization: %w", err)
	}

	return a, nil
}

// Close releases the database
func (a *app) Close() error {
	return a.repo.Close()
}

// print writes v to stdout in the selected format
func (a *app) print(v any) error {
	return a.exporter.Export(v, a.out)
}

// pinger builds the configured reachability checker
func (a *app) pinger(ctx context.Context) adapter.Pinger {
	return adapter.NewPinger(ctx, a.cfg.Probe.PingMethod, a.cfg.Probe.PingTimeout.Duration(), a.log)
}

// newProber wires the probe engine against the staging store
func (a *app) newProber(ctx context.Context) *adapter.Prober {
	var querier adapter.Querier
	if a.cfg.SNMP.IsEnabled() {
		querier = adapter.NewSNMPQuerier(adapter.SNMPConfig{
			Community: a.cfg.SNMP.Community,
			Port:      a.cfg.SNMP.Port,
			Timeout:   a.cfg.SNMP.Timeout.Duration(),
			Retries:   a.cfg.SNMP.Retries,
		})
	}

	p := adapter.NewProber(a.pinger(ctx), querier, a.repo, adapter.ProberConfig{
		BatchSize:         a.cfg.Probe.BatchSize,
		Workers:           a.cfg.Probe.Workers,
		BatchPause:        a.cfg.Probe.BatchPause.Duration(),
		MaxHosts:          a.cfg.Probe.MaxHosts,
		PreserveProcessed: a.cfg.Probe.PreserveProcessed,
	}, a.log, a.clock)
	p.SetEventPublisher(a.bus)
	return p
}

// newSweep wires a direct sweep that classifies by IP range, bypassing staging
func (a *app) newSweep(prober *adapter.Prober) *service.SweepService {
	classifier := service.NewClassifier(a.repo,
		service.NewIPRangeStrategy(a.repo, a.cfg.Classifier.DeviceTypes),
		a.cfg.Classifier.MaxReportedErrors, a.log, a.clock, nil)
	return service.NewSweepService(prober, classifier, a.cfg.Classifier.MaxReportedErrors, a.log, a.clock, a.bus)
}

// newLiveness wires the re-check service
func (a *app) newLiveness(ctx context.Context) *service.LivenessService {
	return service.NewLivenessService(a.repo, a.pinger(ctx), a.cfg.Liveness.Workers, a.log, a.clock, a.bus)
}

// applyConfig takes a reloaded configuration: classifier rules and the
// organization catalog update in place; probe and schedule settings need a restart.
func (a *app) applyConfig(ctx context.Context, cfg *config.Config) error {
	if a.keyword != nil {
		a.keyword.SetRules(cfg.Classifier.DepartmentRules)
	}
	if _, err := a.organization.Sync(ctx, cfg.Organization); err != nil {
		return err
	}
	if cfg.Classifier.Strategy != a.cfg.Classifier.Strategy || cfg.Probe != a.cfg.Probe {
		a.log.Warn().Msg("strategy or probe settings changed, restart to apply")
	}
	return nil
}
