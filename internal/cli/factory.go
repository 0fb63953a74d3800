// Package cli wires a desk from configuration for the ticketflow commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/aretw0/ticketflow/pkg/adapters/file"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/adapters/postgres"
	redisadapter "github.com/aretw0/ticketflow/pkg/adapters/redis"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/notify"
	"github.com/aretw0/ticketflow/pkg/observability"
	"github.com/aretw0/ticketflow/pkg/persistence/middleware"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// Runtime is a desk built from configuration together with the resources
// it owns.
type Runtime struct {
	Desk     *ticketflow.Desk
	Sessions ports.SessionStore
	Tickets  ports.TicketStorage
	Metrics  *observability.Metrics
	Config   *config.Config
	Logger   *slog.Logger

	closers []func() error
}

// Close releases connections in reverse order of creation.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build creates every component named by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	var client *redisadapter.Client
	if cfg.UsesRedis() {
		client = redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rt.closers = append(rt.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
	}
	if err := rt.assemble(ctx, client); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) assemble(ctx context.Context, client *redisadapter.Client) error {
	cfg, logger := rt.Config, rt.Logger

	sessions, err := sessionStore(cfg, client)
	if err != nil {
		return err
	}
	rt.Sessions = sessions

	tickets, closeTickets, err := ticketStorage(cfg, client)
	if err != nil {
		return err
	}
	rt.Tickets = tickets
	if closeTickets != nil {
		rt.closers = append(rt.closers, closeTickets)
	}

	schema, err := loadSchema(cfg)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}

	rt.Metrics = observability.NewMetrics()

	opts := []ticketflow.Option{
		ticketflow.WithLogger(logger),
		ticketflow.WithSessionStore(rt.Sessions),
		ticketflow.WithTicketStorage(rt.Tickets),
		ticketflow.WithSchema(schema),
		ticketflow.WithListLimit(cfg.ListLimit),
		ticketflow.WithStorageTimeout(cfg.StorageTimeout),
		ticketflow.WithLifecycleHooks(observability.AuditHooks(logger)),
		ticketflow.WithLifecycleHooks(rt.Metrics.Hooks()),
		ticketflow.WithLifecycleHooks(notifier.Hooks()),
	}
	if cfg.DistributedLock {
		opts = append(opts, ticketflow.WithLocker(redisadapter.NewLocker(client, cfg.RedisPrefix)))
	}

	desk, err := ticketflow.New(opts...)
	if err != nil {
		return fmt.Errorf("build desk: %w", err)
	}
	rt.Desk = desk

	logger.DebugContext(ctx, "Desk ready",
		"sessions", cfg.SessionBackend,
		"tickets", cfg.TicketBackend,
		"encrypted", cfg.SessionEncryptionKey != "",
		"distributed_lock", cfg.DistributedLock,
		"fields", len(schema))
	return nil
}

func sessionStore(cfg *config.Config, client *redisadapter.Client) (ports.SessionStore, error) {
	var store ports.SessionStore
	switch cfg.SessionBackend {
	case config.BackendFile:
		store = file.New(cfg.SessionDir)
	case config.BackendRedis:
		store = redisadapter.NewFromClient(client,
			redisadapter.WithTTL(cfg.SessionTTL),
			redisadapter.WithPrefix(cfg.RedisPrefix))
	default:
		store = memory.NewStore()
	}

	if cfg.SessionEncryptionKey == "" {
		return store, nil
	}
	keys, err := middleware.ParseKeys(cfg.SessionEncryptionKey, cfg.SessionFallbackKeys...)
	if err != nil {
		return nil, fmt.Errorf("session encryption: %w", err)
	}
	return middleware.Chain(store, middleware.NewEncryptionMiddleware(keys)), nil
}

func ticketStorage(cfg *config.Config, client *redisadapter.Client) (ports.TicketStorage, func() error, error) {
	switch cfg.TicketBackend {
	case config.BackendRedis:
		return redisadapter.NewTicketStore(client, cfg.RedisPrefix), nil, nil
	case config.BackendPostgres:
		store, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, store.Close, nil
	default:
		return memory.NewTicketStore(), nil, nil
	}
}

func loadSchema(cfg *config.Config) (form.Schema, error) {
	if cfg.FormSchema == "" {
		return form.DefaultSchema(cfg.PhoneMinDigits), nil
	}
	schema, err := form.LoadSchema(cfg.FormSchema)
	if err != nil {
		return nil, fmt.Errorf("load form schema: %w", err)
	}
	return schema, nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) (*notify.Notifier, error) {
	newTicket, err := readOptional(cfg.NewTicketTemplate)
	if err != nil {
		return nil, err
	}
	deleted, err := readOptional(cfg.TicketDeletedTemplate)
	if err != nil {
		return nil, err
	}
	templates, err := notify.ParseTemplates(newTicket, deleted)
	if err != nil {
		return nil, err
	}

	var sink ports.Notifier = notify.LogSink{Logger: logger}
	if cfg.NotifyWebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.NotifyWebhookURL, cfg.AdminIDs)
	}
	return notify.New(sink, notify.WithLogger(logger), notify.WithTemplates(templates)), nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}
