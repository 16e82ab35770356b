// Package uninstall mediates the uninstall request/approval protocol. The
// workflow is driven either by the user (two-phase prompt, server
// decision, optional confirmation) or by a server-pushed command decoded
// from the notification feed, which executes without any prompting.
package uninstall

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/internal/presenter"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("uninstall")

// Gateway is the server call the workflow depends on. Satisfied by
// *api.Client.
type Gateway interface {
	RequestUninstall(ctx context.Context, req api.UninstallRequest) (*api.UninstallDecision, error)
}

// Action performs the actual removal. The shipped default only announces
// it; real removal belongs to the platform uninstaller.
type Action interface {
	Execute(scope api.UninstallScope) error
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(api.UninstallScope) error

func (f ActionFunc) Execute(scope api.UninstallScope) error { return f(scope) }

// Metadata is the opaque installation identity attached to every request.
type Metadata struct {
	MACAddress  string
	InstallPath string
	KeyID       string
}

// Outcome describes how a user-driven workflow run ended.
type Outcome int

const (
	// Cancelled: the user backed out of a prompt; nothing was sent.
	Cancelled Outcome = iota
	// Pending: the server accepted the request but an administrator still
	// has to approve it. The agent keeps running.
	Pending
	// Declined: the request was auto-approved but the user chose not to
	// proceed. The agent keeps running.
	Declined
	// Uninstalled: the uninstall action ran and the process is about to
	// terminate.
	Uninstalled
)

type Workflow struct {
	gateway Gateway
	present presenter.Presenter
	action  Action
	meta    Metadata
	timeout time.Duration

	// terminate ends the process after a successful uninstall. Replaced in
	// tests.
	terminate func(code int)
}

func New(gateway Gateway, present presenter.Presenter, action Action, meta Metadata, timeout time.Duration) *Workflow {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if action == nil {
		action = ActionFunc(func(scope api.UninstallScope) error {
			log.Info("uninstall action invoked", "scope", scope.String())
			return nil
		})
	}
	return &Workflow{
		gateway:   gateway,
		present:   present,
		action:    action,
		meta:      meta,
		timeout:   timeout,
		terminate: os.Exit,
	}
}

// Run drives the user-initiated workflow: collect reason and explanation,
// submit, and act on the server's decision. Every non-Uninstalled outcome
// leaves the agent running with its state untouched.
func (w *Workflow) Run(ctx context.Context) (Outcome, error) {
	answers, err := w.present.PromptUninstallRequest()
	if err != nil {
		if errors.Is(err, presenter.ErrCancelled) {
			log.Info("uninstall request cancelled at prompt")
			return Cancelled, nil
		}
		return Cancelled, err
	}

	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	decision, err := w.gateway.RequestUninstall(callCtx, api.UninstallRequest{
		MACAddress:  w.meta.MACAddress,
		InstallPath: w.meta.InstallPath,
		KeyID:       w.meta.KeyID,
		Reason:      answers.Reason,
		Explanation: answers.Explanation,
	})
	if err != nil {
		log.Warn("uninstall request failed", "error", err)
		w.present.Info("Uninstall request failed: " + err.Error())
		return Cancelled, err
	}

	if !decision.AutoApproved {
		log.Info("uninstall request pending approval")
		w.present.Info("Your uninstall request was sent and is waiting for approval.")
		return Pending, nil
	}

	proceed, err := w.present.Confirm("The request was approved. Uninstall now?")
	if err != nil && !errors.Is(err, presenter.ErrCancelled) {
		return Declined, err
	}
	if !proceed {
		log.Info("auto-approved uninstall declined by user")
		return Declined, nil
	}

	w.execute(api.ScopeSpecific)
	return Uninstalled, nil
}

// HandleCommand executes a server-pushed uninstall command. No prompts, no
// selection: the command bypasses the notification lifecycle entirely.
func (w *Workflow) HandleCommand(scope api.UninstallScope) {
	log.Warn("executing server-pushed uninstall", "scope", scope.String())
	w.present.Info("This installation is being removed by the administrator.")
	w.execute(scope)
}

func (w *Workflow) execute(scope api.UninstallScope) {
	if err := w.action.Execute(scope); err != nil {
		log.Error("uninstall action failed", "scope", scope.String(), "error", err)
		return
	}
	log.Info("uninstall complete, terminating")
	w.terminate(0)
}
