// Package container wires configuration, stores, services and workers with
// ordered initialization and reverse-order teardown.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/service"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/config"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/infrastructure/export"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/infrastructure/external/mail"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/infrastructure/external/teams"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/infrastructure/persistence/repository"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/infrastructure/worker"
	"github.com/developersatisa/gestor-back-facturas-pendientes/pkg/database"
)

// Container manages all application dependencies and lifecycle.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	ledgerDB     *database.DB
	managementDB *database.DB

	// Repositories
	invoices port.InvoiceRepository
	clients  port.ClientRepository
	actions  port.ActionRepository

	// Application
	statistics *service.StatisticsService
	reports    *service.ReportService
	notifier   *service.NotifierService

	// Workers
	workers *worker.Manager
}

// New creates and initializes a container. Initialization is ordered: stores,
// migrations, repositories, channels, services, workers. Any failure aborts
// startup.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	c := &Container{config: cfg, logger: logger}

	if err := c.initStores(); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(); err != nil {
		c.Close()
		return nil, err
	}
	c.initWorkers()

	return c, nil
}

func (c *Container) initStores() error {
	ledgerCfg := c.config.Ledger.Database
	ledgerDB, err := database.Open(database.Config{
		Path:            ledgerCfg.Path,
		MaxOpenConns:    ledgerCfg.MaxOpenConns,
		MaxIdleConns:    ledgerCfg.MaxIdleConns,
		ConnMaxLifetime: ledgerCfg.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	c.ledgerDB = ledgerDB

	mgmtCfg := c.config.Management
	managementDB, err := database.Open(database.Config{
		Path:            mgmtCfg.Path,
		MaxOpenConns:    mgmtCfg.MaxOpenConns,
		MaxIdleConns:    mgmtCfg.MaxIdleConns,
		ConnMaxLifetime: mgmtCfg.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		c.Close()
		return fmt.Errorf("failed to open management store: %w", err)
	}
	c.managementDB = managementDB

	if err := database.NewMigrator(c.ledgerDB, c.logger).Apply(database.LedgerMigrations); err != nil {
		c.Close()
		return fmt.Errorf("failed to migrate ledger store: %w", err)
	}
	if err := database.NewMigrator(c.managementDB, c.logger).Apply(database.ManagementMigrations); err != nil {
		c.Close()
		return fmt.Errorf("failed to migrate management store: %w", err)
	}

	return nil
}

func (c *Container) initRepositories() {
	c.invoices = repository.NewInvoiceRepository(c.ledgerDB.DB, c.logger)
	c.clients = repository.NewClientRepository(c.managementDB.DB, c.logger)
	c.actions = repository.NewActionRepository(c.managementDB, c.logger)
}

func (c *Container) initServices() error {
	criteria := c.config.DefaultCriteria()

	c.statistics = service.NewStatisticsService(
		c.invoices,
		c.clients,
		c.config.Statistics.TopCompanies,
		c.config.Statistics.OverduePage,
		c.logger,
	)

	var sink port.ReportSink
	if c.config.Export.Enabled {
		sink = export.NewExcelWriter(c.config.Export.OutputDir, c.logger)
	}
	c.reports = service.NewReportService(c.invoices, c.clients, sink, c.config.Ledger.CompanyNames, c.logger)

	mailSender := mail.NewSMTPSender(mail.Config{
		Host:       c.config.SMTP.Host,
		Port:       c.config.SMTP.Port,
		Username:   c.config.SMTP.Username,
		Password:   c.config.SMTP.Password,
		From:       c.config.SMTP.From,
		SenderName: c.config.SMTP.SenderName,
	}, c.logger)

	var chatSender port.ChatSender
	if c.config.Teams.WebhookURL != "" {
		chatSender = teams.NewWebhookSender(teams.Config{
			WebhookURL: c.config.Teams.WebhookURL,
			Timeout:    c.config.Teams.Timeout,
		}, c.logger)
	}

	scanner := service.NewDueScanner(c.actions, c.invoices, criteria, c.logger)
	dispatcher := service.NewDispatcher(mailSender, chatSender, service.DispatcherConfig{
		Recipient:      c.config.Notifier.Recipient,
		PortalURL:      c.config.Notifier.PortalURL,
		ChannelTimeout: c.config.Notifier.ChannelTimeout,
	}, c.logger)
	c.notifier = service.NewNotifierService(scanner, dispatcher, c.actions, c.clients, c.logger)

	return nil
}

func (c *Container) initWorkers() {
	c.workers = worker.NewManager(c.logger)
	if c.config.Notifier.Enabled {
		c.workers.Register(worker.NewNotifierWorker(c.notifier, c.config.Notifier.Interval, c.logger))
	}
}

// StartWorkers starts the background workers.
func (c *Container) StartWorkers(ctx context.Context) error {
	return c.workers.StartAll(ctx)
}

// StopWorkers stops the background workers.
func (c *Container) StopWorkers() error {
	return c.workers.StopAll()
}

// Statistics returns the statistics assembler.
func (c *Container) Statistics() *service.StatisticsService { return c.statistics }

// Reports returns the report builder.
func (c *Container) Reports() *service.ReportService { return c.reports }

// Notifier returns the notifier job driver.
func (c *Container) Notifier() *service.NotifierService { return c.notifier }

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config { return c.config }

// Close releases the stores in reverse initialization order.
func (c *Container) Close() {
	if c.managementDB != nil {
		if err := c.managementDB.Close(); err != nil {
			c.logger.Error("Failed to close management store", zap.Error(err))
		}
		c.managementDB = nil
	}
	if c.ledgerDB != nil {
		if err := c.ledgerDB.Close(); err != nil {
			c.logger.Error("Failed to close ledger store", zap.Error(err))
		}
		c.ledgerDB = nil
	}
}
