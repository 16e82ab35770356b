package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/focusguard/agent/internal/health"
	"github.com/focusguard/agent/pkg/api"
)

type scriptedGateway struct {
	mu      sync.Mutex
	results []result
	calls   int
}

type result struct {
	feed api.Feed
	err  error
}

func (g *scriptedGateway) GetClientNotifications(context.Context) (api.Feed, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i >= len(g.results) {
		i = len(g.results) - 1
	}
	r := g.results[i]
	return r.feed, r.err
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingSink struct {
	mu    sync.Mutex
	feeds []api.Feed
}

func (s *recordingSink) Ingest(feed api.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds = append(s.feeds, feed)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

func TestPollOnceHandsFeedToSink(t *testing.T) {
	gw := &scriptedGateway{results: []result{
		{feed: api.Feed{Notifications: []api.Notification{{ID: "a"}}}},
	}}
	sink := &recordingSink{}
	mon := health.NewMonitor()
	p := New(gw, sink, mon, time.Second, time.Second)

	p.pollOnce()

	if sink.count() != 1 {
		t.Fatalf("sink received %d feeds, want 1", sink.count())
	}
	if c, _ := mon.Get("poll"); c.Status != health.Healthy {
		t.Errorf("poll health = %v, want healthy", c.Status)
	}
}

func TestFailedCycleIsSkippedWithoutIngest(t *testing.T) {
	gw := &scriptedGateway{results: []result{
		{err: errors.New("connection refused")},
	}}
	sink := &recordingSink{}
	mon := health.NewMonitor()
	p := New(gw, sink, mon, time.Second, time.Second)

	p.pollOnce()
	p.pollOnce()

	if sink.count() != 0 {
		t.Errorf("sink received %d feeds on failing gateway, want 0", sink.count())
	}
	if c, _ := mon.Get("poll"); c.Status != health.Degraded {
		t.Errorf("poll health = %v, want degraded", c.Status)
	}
}

func TestFailureThenRecovery(t *testing.T) {
	gw := &scriptedGateway{results: []result{
		{err: errors.New("timeout")},
		{feed: api.Feed{}},
	}}
	sink := &recordingSink{}
	mon := health.NewMonitor()
	p := New(gw, sink, mon, time.Second, time.Second)

	p.pollOnce()
	p.pollOnce()

	if sink.count() != 1 {
		t.Errorf("sink received %d feeds, want 1 after recovery", sink.count())
	}
	if c, _ := mon.Get("poll"); c.Status != health.Healthy {
		t.Errorf("poll health = %v, want healthy after recovery", c.Status)
	}
}

func TestStopEndsLoopAndIsIdempotent(t *testing.T) {
	gw := &scriptedGateway{results: []result{{feed: api.Feed{}}}}
	sink := &recordingSink{}
	p := New(gw, sink, nil, 10*time.Millisecond, time.Second)

	go p.Start()
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	p.Stop()

	calls := gw.callCount()
	time.Sleep(50 * time.Millisecond)
	if gw.callCount() != calls {
		t.Error("poller kept calling the gateway after Stop")
	}
}

func TestNewClampsZeroIntervals(t *testing.T) {
	p := New(&scriptedGateway{results: []result{{}}}, &recordingSink{}, nil, 0, 0)
	if p.interval <= 0 || p.timeout <= 0 {
		t.Errorf("interval=%v timeout=%v, want positive defaults", p.interval, p.timeout)
	}
}
