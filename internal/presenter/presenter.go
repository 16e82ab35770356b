// Package presenter abstracts the interactive surface. Implementations are
// selected once at startup based on what the host environment provides,
// instead of ad-hoc stand-ins scattered through the code.
package presenter

import (
	"errors"

	"github.com/focusguard/agent/pkg/api"
)

// ErrCancelled is returned when the user dismisses a prompt rather than
// answering it. Callers must distinguish this from an explicitly submitted
// empty answer.
var ErrCancelled = errors.New("cancelled by user")

// UninstallAnswers is the two-phase uninstall collection result. Reason is
// always non-empty; Explanation may be an empty string the user explicitly
// submitted.
type UninstallAnswers struct {
	Reason      string
	Explanation string
}

// Presenter is the capability set the agent needs from its host
// environment.
type Presenter interface {
	// ShowNotification renders a notification that just became current.
	ShowNotification(n api.Notification)

	// Info shows a short informational message.
	Info(message string)

	// Confirm asks a yes/no question.
	Confirm(prompt string) (bool, error)

	// PromptUninstallRequest collects reason and explanation. Returns
	// ErrCancelled when the user backs out of either phase.
	PromptUninstallRequest() (UninstallAnswers, error)

	// PromptSnoozeMinutes asks how long to snooze for.
	PromptSnoozeMinutes() (int, error)

	// PromptWebsite asks for a website to request access to.
	PromptWebsite() (string, error)

	Close() error
}
