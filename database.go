package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alc6/pgtables/postgres"
	"github.com/alc6/pgtables/tables"
)

const (
	ephemeralDatabase = "pgtables"
	ephemeralUser     = "pgtables"
	ephemeralPassword = "pgtables"
)

// EphemeralManager runs a throwaway PostgreSQL container and connects to it.
type EphemeralManager struct {
	image     string
	driver    string
	container *tcpostgres.PostgresContainer
	handle    *postgres.Handle
}

func NewEphemeralManager(image, driver string) DatabaseManager {
	if image == "" {
		image = defaultPostgresImage
	}
	return &EphemeralManager{image: image, driver: driver}
}

func (m *EphemeralManager) Setup(ctx context.Context) error {
	slog.Debug("starting postgresql container", "image", m.image)
	container, err := tcpostgres.Run(ctx,
		m.image,
		tcpostgres.WithDatabase(ephemeralDatabase),
		tcpostgres.WithUsername(ephemeralUser),
		tcpostgres.WithPassword(ephemeralPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	m.container = container

	if err := m.connect(ctx); err != nil {
		return errors.Join(err, m.Close(ctx))
	}

	slog.Info("postgresql container ready", "handle", m.handle.String())
	return nil
}

func (m *EphemeralManager) connect(ctx context.Context) error {
	host, err := m.container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := m.container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return fmt.Errorf("failed to get container port: %w", err)
	}

	m.handle = postgres.New(postgres.Params{
		Database: ephemeralDatabase,
		Host:     host,
		Port:     port.Port(),
		User:     ephemeralUser,
		Password: ephemeralPassword,
		Driver:   m.driver,
	}, postgres.WithLogger(slog.Default()))
	return m.handle.Connect(ctx)
}

func (m *EphemeralManager) Close(ctx context.Context) error {
	var errs []error
	if m.handle != nil {
		errs = append(errs, m.handle.Close())
		m.handle = nil
	}
	if m.container != nil {
		errs = append(errs, m.container.Terminate(ctx))
		m.container = nil
	}
	return errors.Join(errs...)
}

func (m *EphemeralManager) Executor() tables.Executor {
	return m.handle
}
