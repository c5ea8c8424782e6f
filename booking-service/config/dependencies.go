package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/handlers"
	"github.com/stayease/booking-system/booking-service/infrastructure"
	"github.com/stayease/booking-system/booking-service/saga"
	sharedinfra "github.com/stayease/booking-system/shared/infrastructure"
	"github.com/stayease/booking-system/shared/telemetry"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Repositories
	BookingRepository *infrastructure.PostgresBookingRepository
	OutboxStore       *infrastructure.PostgresOutboxStore
	TxManager         *infrastructure.SqlxTxManager

	// Saga steps
	DepositStep      *saga.DepositStep
	CheckoutStep     *saga.CheckoutStep
	CheckInStep      *saga.CheckInStep
	CancellationStep *saga.CancellationStep

	// HTTP Handlers
	BookingHandlers *handlers.BookingHandlers

	// Event Handlers
	BookingSagaHandlers *handlers.BookingSagaHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSSubscriberAdapter
	OutboxRelay     *infrastructure.OutboxRelay

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	// The status mapping and chain tables are static data; a gap in either
	// is a programming error that must fail startup, not a saga at 3am.
	if err := domain.ValidateStatusMapping(); err != nil {
		return nil, fmt.Errorf("invalid status mapping: %w", err)
	}
	if err := domain.ValidateChains(); err != nil {
		return nil, fmt.Errorf("invalid saga chains: %w", err)
	}

	deps := &Dependencies{}

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.BookingServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			log.Printf("Failed to initialize telemetry: %v", err)
			// Continue without telemetry rather than failing
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	if err := runMigrations(db, config.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(config.AWS.SQSQueueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	// Initialize repositories
	deps.BookingRepository = infrastructure.NewPostgresBookingRepository(db)
	deps.OutboxStore = infrastructure.NewPostgresOutboxStore(db)
	deps.TxManager = infrastructure.NewSqlxTxManager(db)

	// Initialize saga steps
	deps.DepositStep = saga.NewDepositStep(deps.BookingRepository, deps.OutboxStore, deps.TxManager)
	deps.CheckoutStep = saga.NewCheckoutStep(deps.BookingRepository, deps.OutboxStore, deps.TxManager)
	deps.CheckInStep = saga.NewCheckInStep(deps.BookingRepository, deps.OutboxStore, deps.TxManager)
	deps.CancellationStep = saga.NewCancellationStep(deps.BookingRepository, deps.OutboxStore, deps.TxManager)

	// Initialize handlers
	deps.BookingHandlers = handlers.NewBookingHandlers(deps.BookingRepository, deps.OutboxStore)
	deps.BookingSagaHandlers = handlers.NewBookingSagaHandlers(
		deps.DepositStep,
		deps.CheckoutStep,
		deps.CheckInStep,
		deps.CancellationStep,
	)

	// Initialize outbox relay
	deps.OutboxRelay = infrastructure.NewOutboxRelay(
		deps.OutboxStore,
		deps.EventPublisher,
		infrastructure.WithPollInterval(time.Duration(config.Relay.PollIntervalMs)*time.Millisecond),
		infrastructure.WithBatchSize(config.Relay.BatchSize),
	)

	return deps, nil
}

func runMigrations(db *sqlx.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.OutboxRelay != nil {
		if err := d.OutboxRelay.Stop(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop outbox relay: %w", err))
		}
	}

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
