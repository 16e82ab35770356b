// Package updatecheck periodically compares the running agent version
// against the server's published version. It only observes and reports;
// downloading and installing updates is the packaging system's job.
package updatecheck

import (
	"context"
	"sync"
	"time"

	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("updatecheck")

// Gateway is the server call the checker depends on. Satisfied by
// *api.Client.
type Gateway interface {
	GetVersion(ctx context.Context) (*api.VersionInfo, error)
}

type Checker struct {
	gateway  Gateway
	current  string
	interval time.Duration
	timeout  time.Duration
	notify   func(message string)
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a checker. notify receives a short user-facing message when
// an update is available; nil disables user notification.
func New(gateway Gateway, currentVersion string, interval, timeout time.Duration, notify func(string)) *Checker {
	if interval <= 0 {
		interval = time.Hour
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Checker{
		gateway:  gateway,
		current:  currentVersion,
		interval: interval,
		timeout:  timeout,
		notify:   notify,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the check loop until Stop is called. Run it on its own
// goroutine.
func (c *Checker) Start() {
	defer close(c.done)

	c.checkOnce()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.checkOnce()
		case <-c.stopChan:
			return
		}
	}
}

// Stop signals the loop to exit and waits for it.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	<-c.done
}

func (c *Checker) checkOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	info, err := c.gateway.GetVersion(ctx)
	if err != nil {
		log.Warn("version check failed", "error", err)
		return
	}

	if info.LatestVersion == "" || info.LatestVersion == c.current {
		log.Debug("agent is up to date", "version", c.current)
		return
	}

	log.Info("update available",
		"current", c.current,
		"latest", info.LatestVersion,
		"forceUpdate", info.ForceUpdate,
		"autoUpdateEnabled", info.AutoUpdateEnabled)

	if info.ForceUpdate {
		log.Warn("server requires an update", "latest", info.LatestVersion)
	}
	if c.notify != nil {
		c.notify("FocusGuard " + info.LatestVersion + " is available.")
	}
}
