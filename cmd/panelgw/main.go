package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/nx584/panelgw/internal/config"
	"github.com/nx584/panelgw/internal/controller"
	"github.com/nx584/panelgw/internal/email"
	"github.com/nx584/panelgw/internal/eventqueue"
	"github.com/nx584/panelgw/internal/httpapi"
	"github.com/nx584/panelgw/internal/link"
	"github.com/nx584/panelgw/internal/metrics"
	"github.com/nx584/panelgw/internal/panel"
)

func main() {
	cfg, showVersion := config.ParseFlags()
	if showVersion {
		fmt.Printf("panelgw %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(1)
	}

	l := setupLogger(cfg.LogFormat, cfg.LogLevel)

	fc, err := config.LoadFile(cfg.ConfigPath)
	if err != nil {
		l.Warn("config_file_load_failed", "path", cfg.ConfigPath, "error", err)
	}

	dial, err := newDialer(cfg, fc, l)
	if err != nil {
		l.Error("transport_init_error", "error", err)
		os.Exit(1)
	}
	mgr, err := link.NewManager(dial, l)
	if err != nil {
		l.Error("link_dial_failed", "error", err)
		os.Exit(1)
	}

	registry := panel.NewRegistry()
	events := eventqueue.New(100, 0)
	settings := controllerSettings(fc)

	ctrl := controller.New(mgr, settings, registry, events, l,
		fc.KnownZoneName, zoneNamePersister(cfg.ConfigPath, fc, l))

	notifier := email.New(fc.Email, fc.Partitions, l)
	ctrl.RegisterExtension(notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Run(ctx, isReadTimeout) }()

	api := httpapi.NewServer(ctrl, httpapi.WithListenAddr(cfg.ListenAddr), httpapi.WithLogger(l))
	api.Start()

	if cfg.MDNSEnable {
		go func() {
			port := portFromAddr(cfg.ListenAddr)
			cleanup, err := startMDNS(ctx, cfg, port)
			if err != nil {
				l.Warn("mdns_start_failed", "error", err)
				return
			}
			l.Info("mdns_started", "service", mdnsServiceType, "port", port)
			<-ctx.Done()
			cleanup()
		}()
	}

	metrics.SetReadinessFunc(func() bool { return ctx.Err() == nil })
	var metricsSrv interface{ Shutdown(context.Context) error }
	if cfg.MetricsAddr != "" {
		metrics.InitBuildInfo(version)
		metricsSrv = metrics.StartHTTP(cfg.MetricsAddr)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigCh:
		l.Info("shutdown_signal", "signal", s.String())
	case err := <-ctrlDone:
		l.Error("controller_stopped", "error", err)
	}

	cancel()
	_ = api.Shutdown(context.Background())
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(context.Background())
	}
	_ = mgr.Close()
}

func isReadTimeout(err error) bool { return errors.Is(err, link.ErrReadTimeout) }

func portFromAddr(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			p = addr[i+1:]
		}
	}
	n, _ := strconv.Atoi(p)
	return n
}
