// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/auditaspect/auditaspect/internal/audit"
	"github.com/auditaspect/auditaspect/internal/config"
	"github.com/auditaspect/auditaspect/internal/handlers"
	"github.com/auditaspect/auditaspect/internal/intercept"
	"github.com/auditaspect/auditaspect/internal/observability"
	"github.com/auditaspect/auditaspect/internal/store"
	"github.com/auditaspect/auditaspect/pkg/errutil"
)

// NewDemoCmd creates the demo subcommand.
func NewDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the audited demo service scenario",
		Long: `Run a small demo service through the interceptor with the configured
audit handlers: a successful call, a method-level override that only hits
the in-memory sink, and a failing call that exercises AFTER_THROWING.`,
		RunE: runDemo,
	}
}

// buildHandlers constructs the named handler set from configuration.
// writer may be nil when no db-kind handler is configured.
func buildHandlers(cfg config.Config, writer handlers.Writer) (map[string]audit.Handler, []*handlers.DBHandler, error) {
	built := make(map[string]audit.Handler, len(cfg.Audit.Handlers))
	var dbHandlers []*handlers.DBHandler

	for _, hc := range cfg.Audit.Handlers {
		switch hc.Kind {
		case config.KindDB:
			if writer == nil {
				return nil, nil, oops.Code("CONFIG_INVALID").With("handler", hc.Name).
					Errorf("handler %q has kind db but no database is configured", hc.Name)
			}
			db := handlers.NewDBHandler(writer, cfg.WAL.Path)
			built[hc.Name] = db
			dbHandlers = append(dbHandlers, db)
		case config.KindMemory:
			built[hc.Name] = handlers.NewMemoryHandler()
		case config.KindLog:
			built[hc.Name] = handlers.NewLogHandler(slog.Default())
		case config.KindFailing:
			built[hc.Name] = handlers.FailingHandler{}
		default:
			return nil, nil, oops.Code("CONFIG_INVALID").With("handler", hc.Name).
				Errorf("unknown handler kind %q", hc.Kind)
		}
	}
	return built, dbHandlers, nil
}

// buildAttachments converts configured attachments to audit declarations,
// preserving declaration order.
func buildAttachments(cfg config.Config) []audit.Attachment {
	atts := make([]audit.Attachment, 0, len(cfg.Audit.Attachments))
	for _, a := range cfg.Audit.Attachments {
		atts = append(atts, audit.Attachment{
			Target:   a.Target,
			Handlers: a.Handlers,
		})
	}
	return atts
}

// needsDatabase reports whether any configured handler persists to the
// database.
func needsDatabase(cfg config.Config) bool {
	for _, hc := range cfg.Audit.Handlers {
		if hc.Kind == config.KindDB {
			return true
		}
	}
	return false
}

// demoService is the audited service the demo drives. Every method routes
// through the interceptor under the "DemoService" type name.
type demoService struct {
	ic *intercept.Interceptor
}

func (s *demoService) Ok(ctx context.Context, input string) (string, error) {
	ret, err := s.ic.Call(ctx, "DemoService", "Ok", []any{input}, func(context.Context) (any, error) {
		return strings.ToUpper(input), nil
	})
	if err != nil {
		return "", err
	}
	return ret.(string), nil
}

func (s *demoService) OnlyMemorySink(ctx context.Context) error {
	_, err := s.ic.Call(ctx, "DemoService", "OnlyMemorySink", nil, func(context.Context) (any, error) {
		return nil, nil
	})
	return err
}

func (s *demoService) Boom(ctx context.Context) error {
	_, err := s.ic.Call(ctx, "DemoService", "Boom", nil, func(context.Context) (any, error) {
		return nil, oops.Code("INVALID_ARGUMENT").Errorf("expected")
	})
	return err
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := slog.Default()

	if cfg.Metrics.Enabled {
		obs := observability.NewServer(cfg.Metrics.Addr, func() bool { return true })
		if _, err := obs.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				errutil.LogError(logger, "observability shutdown failed", err)
			}
		}()
	}

	var writer handlers.Writer
	if needsDatabase(cfg) {
		if cfg.Database.URL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("database URL is required (config database.url or DATABASE_URL)")
		}
		pool, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		pgWriter := handlers.NewPostgresWriter(pool)
		defer func() {
			if err := pgWriter.Close(); err != nil {
				errutil.LogError(logger, "audit writer shutdown failed", err)
			}
		}()
		writer = pgWriter
	}

	handlerMap, dbHandlers, err := buildHandlers(cfg, writer)
	if err != nil {
		return err
	}

	bindings, err := audit.NewBindings(buildAttachments(cfg))
	if err != nil {
		return err
	}

	dispatcher, err := audit.NewDispatcher(audit.NewRegistry(handlerMap), audit.WithLogger(logger))
	if err != nil {
		return err
	}

	ic, err := intercept.New(bindings, dispatcher)
	if err != nil {
		return err
	}

	// Parked synchronous writes from a previous run drain before new audit
	// activity starts.
	for _, db := range dbHandlers {
		if err := db.ReplayWAL(ctx); err != nil {
			errutil.LogError(logger, "audit WAL replay failed", err)
		}
	}

	svc := &demoService{ic: ic}

	result, err := svc.Ok(ctx, "hello")
	if err != nil {
		return err
	}
	cmd.Printf("Ok(%q) = %q\n", "hello", result)

	if err := svc.OnlyMemorySink(ctx); err != nil {
		return err
	}
	cmd.Println("OnlyMemorySink() completed")

	if err := svc.Boom(ctx); err != nil {
		cmd.Printf("Boom() failed as expected: %v\n", err)
	} else {
		return oops.Errorf("Boom() unexpectedly succeeded")
	}

	for name, h := range handlerMap {
		if mem, ok := h.(*handlers.MemoryHandler); ok {
			cmd.Printf("%s recorded:\n", name)
			for _, event := range mem.Events() {
				cmd.Printf("  %s\n", event)
			}
		}
	}

	return nil
}
