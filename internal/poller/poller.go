// Package poller fetches the client notification feed on a fixed interval
// and hands it to the state machine. A failed cycle is skipped outright:
// no state change, no retry burst, no backoff growth.
package poller

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/focusguard/agent/internal/health"
	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("poller")

// Gateway is the server call the poller depends on. Satisfied by
// *api.Client.
type Gateway interface {
	GetClientNotifications(ctx context.Context) (api.Feed, error)
}

// Sink receives each successfully polled feed. Satisfied by
// *state.Machine.
type Sink interface {
	Ingest(api.Feed)
}

type Poller struct {
	gateway   Gateway
	sink      Sink
	healthMon *health.Monitor
	interval  time.Duration
	timeout   time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// New creates a poller. interval is the poll cadence; timeout bounds each
// individual server call.
func New(gateway Gateway, sink Sink, healthMon *health.Monitor, interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Poller{
		gateway:   gateway,
		sink:      sink,
		healthMon: healthMon,
		interval:  interval,
		timeout:   timeout,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the polling loop until Stop is called. Run it on its own
// goroutine; user-facing actions must never wait behind a poll.
func (p *Poller) Start() {
	defer close(p.done)

	// Jitter: random delay before the first poll to avoid thundering herd
	// after mass restart of agents.
	jitter := time.Duration(rand.Int64N(int64(p.interval)))
	log.Info("initial poll jitter", "delay", jitter)
	select {
	case <-time.After(jitter):
	case <-p.stopChan:
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce()

	for {
		select {
		case <-ticker.C:
			p.pollOnce()
		case <-p.stopChan:
			return
		}
	}
}

// Stop signals the loop to exit between cycles and waits for it to finish.
// An in-flight server call runs to its timeout; it is not interrupted.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	<-p.done
}

func (p *Poller) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	feed, err := p.gateway.GetClientNotifications(ctx)
	if err != nil {
		// Skipped cycle: the next tick tries again at the same cadence.
		log.Warn("poll failed, skipping cycle", "error", err)
		if p.healthMon != nil {
			p.healthMon.Update("poll", health.Degraded, err.Error())
		}
		return
	}

	if p.healthMon != nil {
		p.healthMon.Update("poll", health.Healthy, "")
	}
	log.Debug("poll succeeded",
		"notifications", len(feed.Notifications),
		"uninstallCommands", len(feed.Uninstalls))
	p.sink.Ingest(feed)
}
