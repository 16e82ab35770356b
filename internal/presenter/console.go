package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("presenter")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)
	bodyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	metaStyle = lipgloss.NewStyle().
			Faint(true)
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// ConsolePresenter renders to the attached terminal and collects answers
// through interactive forms.
type ConsolePresenter struct{}

func NewConsole() *ConsolePresenter {
	return &ConsolePresenter{}
}

func (c *ConsolePresenter) ShowNotification(n api.Notification) {
	title := n.Title
	if title == "" {
		title = "Notification"
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "priority %d", n.Priority)
	if !n.AllowBrowserUsage {
		meta.WriteString(" · browser blocked")
	} else if len(n.AllowedWebsites) > 0 {
		fmt.Fprintf(&meta, " · browser limited to %s", strings.Join(n.AllowedWebsites, ", "))
	}

	fmt.Println()
	fmt.Println(titleStyle.Render(title))
	fmt.Println(bodyStyle.Render(n.Message))
	fmt.Println(metaStyle.Render(meta.String()))
}

func (c *ConsolePresenter) Info(message string) {
	fmt.Println(infoStyle.Render(message))
}

func (c *ConsolePresenter) Confirm(prompt string) (bool, error) {
	var answer bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Value(&answer),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCancelled
		}
		return false, err
	}
	return answer, nil
}

// PromptUninstallRequest runs the two-phase collection. Phase one requires
// a non-empty reason; backing out of either phase cancels the whole
// request. An explanation submitted as empty text is a valid answer and is
// distinct from a cancel.
func (c *ConsolePresenter) PromptUninstallRequest() (UninstallAnswers, error) {
	var answers UninstallAnswers

	reasonForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Why do you want to uninstall?").
			Description("A reason is required.").
			Value(&answers.Reason),
	))
	if err := reasonForm.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return UninstallAnswers{}, ErrCancelled
		}
		return UninstallAnswers{}, err
	}
	if strings.TrimSpace(answers.Reason) == "" {
		return UninstallAnswers{}, ErrCancelled
	}

	explanationForm := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Anything else we should know?").
			Description("Optional detail for the administrator.").
			Value(&answers.Explanation),
	))
	if err := explanationForm.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return UninstallAnswers{}, ErrCancelled
		}
		return UninstallAnswers{}, err
	}

	return answers, nil
}

func (c *ConsolePresenter) PromptSnoozeMinutes() (int, error) {
	minutes := 15
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Snooze for how long?").
			Options(
				huh.NewOption("5 minutes", 5),
				huh.NewOption("15 minutes", 15),
				huh.NewOption("30 minutes", 30),
				huh.NewOption("1 hour", 60),
			).
			Value(&minutes),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, ErrCancelled
		}
		return 0, err
	}
	return minutes, nil
}

func (c *ConsolePresenter) PromptWebsite() (string, error) {
	var website string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Which website do you need?").
			Placeholder("docs.example.org").
			Value(&website),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	website = strings.TrimSpace(website)
	if website == "" {
		return "", ErrCancelled
	}
	return website, nil
}

func (c *ConsolePresenter) Close() error {
	return nil
}
