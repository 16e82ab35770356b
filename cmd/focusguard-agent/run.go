package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focusguard/agent/internal/config"
	"github.com/focusguard/agent/internal/health"
	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/internal/poller"
	"github.com/focusguard/agent/internal/presenter"
	"github.com/focusguard/agent/internal/restriction"
	"github.com/focusguard/agent/internal/state"
	"github.com/focusguard/agent/internal/uninstall"
	"github.com/focusguard/agent/internal/updatecheck"
	"github.com/focusguard/agent/pkg/api"
)

func runAgent() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	log := logging.L("main")

	if cfg.ClientID == "" {
		fmt.Fprintln(os.Stderr, "Not registered. Run 'focusguard-agent register' first.")
		os.Exit(1)
	}
	if cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Server URL required. Use --server flag or set in config.")
		os.Exit(1)
	}

	log.Info("starting agent",
		"version", version,
		logging.KeyClientID, cfg.ClientID,
		"server", cfg.ServerURL)

	client := newAPIClient(cfg)
	healthMon := health.NewMonitor()
	present := newPresenter()
	defer present.Close()

	applier := restriction.NewApplier(restriction.EnforcerFunc(func(p restriction.Policy) error {
		if p.Blocked {
			log.Info("browser access restricted", "allowedWebsites", p.AllowedWebsites)
		} else {
			log.Info("browser access unrestricted")
		}
		return nil
	}))

	machine := state.New(client, applier)
	machine.OnDisplay(func(n api.Notification) {
		present.ShowNotification(n)
	})

	workflow := uninstall.New(client, present, nil, uninstallMetadata(cfg),
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
	machine.OnUninstall(workflow.HandleCommand)

	p := poller.New(client, machine, healthMon,
		time.Duration(cfg.PollIntervalSeconds)*time.Second,
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
	defer p.Stop()

	// Update notices go to the log, not the presenter: the checker runs on
	// its own goroutine and must not write to the terminal underneath an
	// open form.
	checker := updatecheck.New(client, version,
		time.Duration(cfg.UpdateCheckMinutes)*time.Minute,
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second,
		func(message string) {
			log.Info("update notice", "message", message)
		})
	defer checker.Stop()

	startBackground(p, checker)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if interactive() {
		go commandLoop(machine, workflow, client, sigChan)
	}

	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())
}

// startBackground launches the polling and update-check loops. Both Start
// methods block until Stop, so each gets its own goroutine; the caller
// continues to the signal wait.
func startBackground(p *poller.Poller, checker *updatecheck.Checker) {
	go p.Start()
	go checker.Start()
}

// runUninstall drives the user-initiated uninstall request workflow. A
// Pending or Declined outcome leaves the installation in place.
func runUninstall() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)

	if cfg.ClientID == "" {
		fmt.Fprintln(os.Stderr, "Not registered; nothing to uninstall.")
		os.Exit(1)
	}

	client := newAPIClient(cfg)
	present := presenter.NewConsole()
	defer present.Close()

	workflow := uninstall.New(client, present, nil, uninstallMetadata(cfg),
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second)

	outcome, err := workflow.Run(context.Background())
	if err != nil {
		os.Exit(1)
	}
	switch outcome {
	case uninstall.Cancelled:
		fmt.Println("Uninstall request cancelled.")
	case uninstall.Pending:
		fmt.Println("Uninstall request submitted; awaiting administrator approval.")
	case uninstall.Declined:
		fmt.Println("Uninstall not performed.")
	}
}

// newPresenter wraps the console presenter with desktop toasts when the
// agent is attached to a terminal; headless runs keep the console-only
// presenter so prompts fail fast instead of blocking on a hidden form.
func newPresenter() presenter.Presenter {
	console := presenter.NewConsole()
	if interactive() {
		return presenter.NewDesktop(console)
	}
	return console
}

func interactive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func uninstallMetadata(cfg *config.Config) uninstall.Metadata {
	return uninstall.Metadata{
		MACAddress:  cfg.MACAddress,
		InstallPath: cfg.InstallPath,
		KeyID:       cfg.KeyID,
	}
}
