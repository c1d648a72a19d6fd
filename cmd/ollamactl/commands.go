package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verlane/ollamactl"
)

type command struct {
	global *GlobalFlags
}

// loadConfig merges the optional config file with CLI overrides.
func (c *command) loadConfig(svc ServiceFlags) (*ollamactl.FileConfig, error) {
	var fc *ollamactl.FileConfig
	var err error
	if c.global.ConfigPath != "" {
		fc, err = ollamactl.LoadConfig(c.global.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", c.global.ConfigPath, err)
		}
	} else {
		fc = ollamactl.DefaultConfig()
	}

	if svc.Command != "" {
		fc.Service.Command = svc.Command
		if svc.ProcessName == "" {
			fc.Service.ProcessName = ""
		}
	}
	if svc.ProcessName != "" {
		fc.Service.ProcessName = svc.ProcessName
	}
	if svc.Port > 0 {
		fc.Service.Port = svc.Port
	}
	if svc.Timeout > 0 {
		fc.Service.HealthCheck.Timeout = svc.Timeout
	}
	if svc.Interval > 0 {
		fc.Service.HealthCheck.Interval = svc.Interval
	}
	if svc.MaxAttempts > 0 {
		fc.Service.HealthCheck.MaxAttempts = svc.MaxAttempts
	}
	fc.Service = fc.Service.Normalized()
	return fc, nil
}

// buildManager assembles the manager with its store and history sinks.
func (c *command) buildManager(fc *ollamactl.FileConfig) (*ollamactl.Manager, ollamactl.Store, error) {
	lg := ollamactl.NewLogger(c.global.LogLevel, c.global.LogFile)
	mgr, err := ollamactl.NewWithLogger(fc.Service, lg)
	if err != nil {
		return nil, nil, err
	}

	var st ollamactl.Store
	if fc.Store.DSN != "" {
		st, err = ollamactl.NewStoreFromDSN(fc.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := mgr.SetStore(st); err != nil {
			return nil, nil, fmt.Errorf("prepare store: %w", err)
		}
	}

	if len(fc.History.Sinks) > 0 {
		sinks := make([]ollamactl.HistorySink, 0, len(fc.History.Sinks))
		for _, dsn := range fc.History.Sinks {
			s, err := ollamactl.NewHistorySinkFromDSN(dsn)
			if err != nil {
				lg.Warn("skipping history sink", "dsn", dsn, "error", err)
				continue
			}
			sinks = append(sinks, s)
		}
		mgr.SetHistorySinks(sinks...)
	}
	return mgr, st, nil
}

func (c *command) Start(ctx context.Context, svc ServiceFlags) error {
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := mgr.Start(ctx); err != nil {
		return err
	}
	printJSON(mgr.Status(ctx))
	return nil
}

func (c *command) Stop(ctx context.Context, svc ServiceFlags) error {
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := mgr.Stop(ctx); err != nil {
		return err
	}
	printJSON(mgr.Status(ctx))
	return nil
}

func (c *command) Status(ctx context.Context, svc ServiceFlags, f StatusFlags) error {
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if f.History {
		if st == nil {
			return fmt.Errorf("history requires a store DSN in the config ([store] dsn)")
		}
		limit := f.Limit
		if limit <= 0 {
			limit = 20
		}
		recs, err := st.Recent(ctx, limit)
		if err != nil {
			return err
		}
		printJSON(recs)
		return nil
	}

	printJSON(mgr.Status(ctx))
	if !f.Watch {
		return nil
	}
	interval := f.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			printJSON(mgr.Status(ctx))
		}
	}
}

func (c *command) Wait(ctx context.Context, svc ServiceFlags, f WaitFlags) error {
	if f.Timeout > 0 {
		svc.Timeout = f.Timeout
	}
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := mgr.WaitForHealth(ctx); err != nil {
		return err
	}
	printJSON(mgr.Status(ctx))
	return nil
}

// Serve runs the admin HTTP API until interrupted.
func (c *command) Serve(ctx context.Context, svc ServiceFlags, f ServeFlags) error {
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := ollamactl.RegisterMetricsDefault(); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	listen := f.Listen
	if listen == "" {
		listen = fc.Server.Listen
	}
	srv := ollamactl.NewHTTPServer(listen, f.BasePath, mgr, st)
	fmt.Printf("admin API listening on %s\n", listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-ctx.Done():
	case <-sigCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeStore(st ollamactl.Store) {
	if st != nil {
		_ = st.Close()
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return
	}
	fmt.Println(string(b))
}
