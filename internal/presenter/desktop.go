package presenter

import (
	"github.com/gen2brain/beeep"

	"github.com/focusguard/agent/pkg/api"
)

// DesktopPresenter wraps another Presenter and additionally raises an OS
// toast when a notification becomes current, so the user sees it even when
// the console is buried.
type DesktopPresenter struct {
	inner  Presenter
	notify func(title, message string, icon any) error
}

func NewDesktop(inner Presenter) *DesktopPresenter {
	return &DesktopPresenter{
		inner:  inner,
		notify: beeep.Notify,
	}
}

func (d *DesktopPresenter) ShowNotification(n api.Notification) {
	title := n.Title
	if title == "" {
		title = "FocusGuard"
	}
	if err := d.notify(title, n.Message, ""); err != nil {
		log.Warn("desktop toast failed", "error", err)
	}
	d.inner.ShowNotification(n)
}

func (d *DesktopPresenter) Info(message string) {
	d.inner.Info(message)
}

func (d *DesktopPresenter) Confirm(prompt string) (bool, error) {
	return d.inner.Confirm(prompt)
}

func (d *DesktopPresenter) PromptUninstallRequest() (UninstallAnswers, error) {
	return d.inner.PromptUninstallRequest()
}

func (d *DesktopPresenter) PromptSnoozeMinutes() (int, error) {
	return d.inner.PromptSnoozeMinutes()
}

func (d *DesktopPresenter) PromptWebsite() (string, error) {
	return d.inner.PromptWebsite()
}

func (d *DesktopPresenter) Close() error {
	return d.inner.Close()
}
