package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"

	"github.com/focusguard/agent/internal/presenter"
	"github.com/focusguard/agent/internal/restriction"
	"github.com/focusguard/agent/internal/state"
	"github.com/focusguard/agent/internal/uninstall"
	"github.com/focusguard/agent/pkg/api"
)

// commandLoop reads commands from stdin while the agent runs. It exits
// the process via sigChan on "quit" so shutdown shares one path with
// SIGINT/SIGTERM.
func commandLoop(machine *state.Machine, workflow *uninstall.Workflow, client *api.Client, sigChan chan<- os.Signal) {
	present := presenter.NewConsole()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("FocusGuard Agent running. Type 'help' for commands.")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			printHelp()
		case "show":
			showState(machine)
		case "done":
			completeCurrent(machine)
		case "snooze":
			snoozeCurrent(machine, present)
		case "website":
			requestWebsite(client, present)
		case "open":
			openWebsite(machine, arg)
		case "uninstall":
			if runWorkflow(workflow) {
				return
			}
		case "quit", "exit":
			sigChan <- os.Interrupt
			return
		default:
			fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`Commands:
  show        show the current notification and restriction state
  done        mark the current notification as completed
  snooze      snooze the current notification (one-time)
  website     request access to an additional website
  open <url>  open a website in the browser, if allowed
  uninstall   request removal of this installation
  quit        stop the agent`)
}

func showState(machine *state.Machine) {
	snap := machine.Snapshot()
	fmt.Printf("Phase: %s\n", snap.Phase)
	if snap.Current != nil {
		fmt.Printf("Current: [%d] %s — %s\n", snap.Current.Priority, snap.Current.Title, snap.Current.Message)
	}
	if snap.Phase == state.Snoozed {
		fmt.Printf("Snoozed until %s\n", snap.SnoozeUntil.Format(time.Kitchen))
	}
	if len(snap.Pending) > 1 {
		fmt.Printf("Pending notifications: %d\n", len(snap.Pending))
	}
	fmt.Println(policyLine(snap.Policy))
}

// policyLine renders the three restriction states: fully blocked,
// limited to an allow-list, unrestricted.
func policyLine(p restriction.Policy) string {
	switch {
	case p.Blocked:
		return "Browser blocked."
	case len(p.AllowedWebsites) > 0:
		return "Browser limited to: " + strings.Join(p.AllowedWebsites, ", ")
	default:
		return "Browser unrestricted."
	}
}

func completeCurrent(machine *state.Machine) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := machine.Complete(ctx); err != nil {
		fmt.Printf("Could not complete: %v\n", err)
		return
	}
	fmt.Println("Done.")
}

func snoozeCurrent(machine *state.Machine, present presenter.Presenter) {
	minutes, err := present.PromptSnoozeMinutes()
	if err != nil {
		if !errors.Is(err, presenter.ErrCancelled) {
			fmt.Printf("Snooze failed: %v\n", err)
		}
		return
	}
	if err := machine.Snooze(time.Duration(minutes) * time.Minute); err != nil {
		fmt.Println(snoozeFailureLine(err))
		return
	}
	fmt.Printf("Snoozed for %d minutes.\n", minutes)
}

// snoozeFailureLine maps snooze errors to user-facing text. Snooze is a
// one-shot capability for the whole session, not per notification.
func snoozeFailureLine(err error) string {
	switch {
	case errors.Is(err, state.ErrSnoozeUsed):
		return "Snooze already used this session."
	case errors.Is(err, state.ErrNoCurrent):
		return "Nothing to snooze."
	default:
		return fmt.Sprintf("Snooze failed: %v", err)
	}
}

func requestWebsite(client *api.Client, present presenter.Presenter) {
	website, err := present.PromptWebsite()
	if err != nil {
		if !errors.Is(err, presenter.ErrCancelled) {
			fmt.Printf("Request failed: %v\n", err)
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.RequestWebsite(ctx, website); err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	fmt.Println("Website request submitted for approval.")
}

func openWebsite(machine *state.Machine, url string) {
	if url == "" {
		fmt.Println("Usage: open <url>")
		return
	}
	policy := machine.Snapshot().Policy
	if !policy.Allows(url) {
		fmt.Printf("Blocked: %s is not on the allowed list.\n", url)
		return
	}
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	if err := browser.OpenURL(url); err != nil {
		fmt.Printf("Could not open browser: %v\n", err)
	}
}

// runWorkflow returns true when the process is being removed and the
// loop should stop.
func runWorkflow(workflow *uninstall.Workflow) bool {
	outcome, err := workflow.Run(context.Background())
	if err != nil {
		return false
	}
	switch outcome {
	case uninstall.Pending:
		fmt.Println("Uninstall request submitted; awaiting administrator approval.")
	case uninstall.Declined:
		fmt.Println("Uninstall not performed.")
	}
	return outcome == uninstall.Uninstalled
}
