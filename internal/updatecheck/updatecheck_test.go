package updatecheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/focusguard/agent/pkg/api"
)

type fakeGateway struct {
	info *api.VersionInfo
	err  error
}

func (f *fakeGateway) GetVersion(context.Context) (*api.VersionInfo, error) {
	return f.info, f.err
}

func TestCheckNotifiesOnNewerVersion(t *testing.T) {
	var msgs []string
	c := New(&fakeGateway{info: &api.VersionInfo{LatestVersion: "2.0.0"}},
		"1.0.0", time.Hour, time.Second, func(m string) { msgs = append(msgs, m) })

	c.checkOnce()

	if len(msgs) != 1 {
		t.Fatalf("notified %d times, want 1", len(msgs))
	}
}

func TestCheckSilentWhenUpToDate(t *testing.T) {
	var msgs []string
	c := New(&fakeGateway{info: &api.VersionInfo{LatestVersion: "1.0.0"}},
		"1.0.0", time.Hour, time.Second, func(m string) { msgs = append(msgs, m) })

	c.checkOnce()

	if len(msgs) != 0 {
		t.Errorf("notified %d times for current version, want 0", len(msgs))
	}
}

func TestCheckSwallowsGatewayFailure(t *testing.T) {
	var msgs []string
	c := New(&fakeGateway{err: errors.New("down")},
		"1.0.0", time.Hour, time.Second, func(m string) { msgs = append(msgs, m) })

	c.checkOnce()

	if len(msgs) != 0 {
		t.Errorf("notified on failed check")
	}
}

func TestCheckIgnoresEmptyLatestVersion(t *testing.T) {
	var msgs []string
	c := New(&fakeGateway{info: &api.VersionInfo{}},
		"1.0.0", time.Hour, time.Second, func(m string) { msgs = append(msgs, m) })

	c.checkOnce()

	if len(msgs) != 0 {
		t.Errorf("notified despite empty latest version")
	}
}

func TestStopEndsLoop(t *testing.T) {
	c := New(&fakeGateway{info: &api.VersionInfo{}}, "1.0.0", 10*time.Millisecond, time.Second, nil)
	go c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("checker did not stop")
	}
}
