// Package state owns the client-side notification lifecycle: which
// notifications are pending, which one is current, and how snooze and
// completion move between them. All transitions happen under one mutex;
// display, enforcement, and uninstall execution are callbacks registered at
// startup and invoked outside the lock.
package state

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/internal/restriction"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("state")

var (
	// ErrSnoozeUsed means the one-shot session snooze was already spent.
	ErrSnoozeUsed = errors.New("snooze already used this session")
	// ErrNoCurrent means the operation needs an active notification.
	ErrNoCurrent = errors.New("no active notification")
)

// Phase is the coarse lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Active
	Snoozed
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Snoozed:
		return "snoozed"
	default:
		return "idle"
	}
}

// CompletionGateway is the server call used by Complete. Satisfied by
// *api.Client.
type CompletionGateway interface {
	CompleteNotification(ctx context.Context, notificationID string) error
}

// Machine holds the owned client state for the process lifetime.
type Machine struct {
	mu            sync.Mutex
	notifications []api.Notification
	currentID     string
	hasCurrent    bool
	snoozeUntil   time.Time
	snoozeUsed    bool

	gateway     CompletionGateway
	applier     *restriction.Applier
	onDisplay   func(api.Notification)
	onUninstall func(api.UninstallScope)

	now func() time.Time
}

// New creates a machine bound to its completion gateway and policy applier.
func New(gateway CompletionGateway, applier *restriction.Applier) *Machine {
	return &Machine{
		gateway: gateway,
		applier: applier,
		now:     time.Now,
	}
}

// OnDisplay registers the callback invoked when a notification becomes
// current. The callback receives a copy.
func (m *Machine) OnDisplay(fn func(api.Notification)) {
	m.onDisplay = fn
}

// OnUninstall registers the handler for server-pushed uninstall commands.
func (m *Machine) OnUninstall(fn func(api.UninstallScope)) {
	m.onUninstall = fn
}

// Ingest applies a freshly polled feed. Pushed uninstall commands are
// handed to the registered handler before any selection; they never reach
// priority selection or display. User notifications replace the pending
// set, and the stable maximum-priority entry becomes current unless an
// unexpired snooze suppresses selection.
func (m *Machine) Ingest(feed api.Feed) {
	for _, scope := range feed.Uninstalls {
		log.Warn("server pushed uninstall command", "scope", scope.String())
		if m.onUninstall != nil {
			m.onUninstall(scope)
		}
	}

	m.mu.Lock()

	if !m.snoozeUntil.IsZero() {
		if m.now().Before(m.snoozeUntil) {
			// Suppressed: no selection change while snoozed.
			m.mu.Unlock()
			return
		}
		// Snooze elapsed. It stays spent for the session.
		m.snoozeUntil = time.Time{}
		log.Info("snooze expired")
	}

	m.notifications = dedupeByID(feed.Notifications)

	changed, current := m.reselectLocked()
	policy := m.policyLocked()
	m.mu.Unlock()

	if changed && m.onDisplay != nil {
		m.onDisplay(current)
	}
	if m.applier != nil {
		m.applier.Apply(policy)
	}
}

// Snooze suppresses the current notification and its restrictions for the
// given duration. One shot per process lifetime: only the first use
// succeeds, whatever the duration.
func (m *Machine) Snooze(d time.Duration) error {
	m.mu.Lock()
	if m.snoozeUsed {
		m.mu.Unlock()
		return ErrSnoozeUsed
	}
	if !m.hasCurrent {
		m.mu.Unlock()
		return ErrNoCurrent
	}
	m.snoozeUntil = m.now().Add(d)
	m.snoozeUsed = true
	policy := m.policyLocked()
	m.mu.Unlock()

	log.Info("notification snoozed", "until", m.snoozeUntil.Format(time.RFC3339))
	if m.applier != nil {
		m.applier.Apply(policy)
	}
	return nil
}

// Complete completes the current notification. With no current
// notification it is a silent no-op. The server call happens first; local
// state only changes once the server accepted the completion.
func (m *Machine) Complete(ctx context.Context) error {
	m.mu.Lock()
	if !m.hasCurrent {
		m.mu.Unlock()
		return nil
	}
	id := m.currentID
	m.mu.Unlock()

	return m.CompleteByID(ctx, id)
}

// CompleteByID completes one notification by id. Completion only affects
// the targeted id: if it is not the current notification, the selection is
// untouched.
func (m *Machine) CompleteByID(ctx context.Context, id string) error {
	if err := m.gateway.CompleteNotification(ctx, id); err != nil {
		log.Warn("completion rejected, state unchanged", logging.KeyNotificationID, id, "error", err)
		return err
	}

	m.mu.Lock()
	m.notifications = slices.DeleteFunc(m.notifications, func(n api.Notification) bool {
		return n.ID == id
	})

	var (
		changed bool
		current api.Notification
	)
	if m.hasCurrent && m.currentID == id {
		m.hasCurrent = false
		m.currentID = ""
		changed, current = m.reselectLocked()
	}
	policy := m.policyLocked()
	m.mu.Unlock()

	log.Info("notification completed", logging.KeyNotificationID, id)
	if changed && m.onDisplay != nil {
		m.onDisplay(current)
	}
	if m.applier != nil {
		m.applier.Apply(policy)
	}
	return nil
}

// reselectLocked picks the stable maximum-priority pending notification as
// current. Returns whether the current identity changed (a new notification
// should be displayed) and the selected value.
func (m *Machine) reselectLocked() (bool, api.Notification) {
	if len(m.notifications) == 0 {
		if m.hasCurrent {
			log.Info("no pending notifications, going idle")
		}
		m.hasCurrent = false
		m.currentID = ""
		return false, api.Notification{}
	}

	best := 0
	for i := 1; i < len(m.notifications); i++ {
		// Strictly greater keeps the first of tied priorities, matching
		// server order.
		if m.notifications[i].Priority > m.notifications[best].Priority {
			best = i
		}
	}
	selected := m.notifications[best]

	if m.hasCurrent && m.currentID == selected.ID {
		return false, selected
	}
	m.hasCurrent = true
	m.currentID = selected.ID
	log.Info("notification selected",
		logging.KeyNotificationID, selected.ID,
		"priority", selected.Priority,
		"pending", len(m.notifications))
	return true, selected
}

// currentLocked returns a pointer to the live current element, or nil.
func (m *Machine) currentLocked() *api.Notification {
	if !m.hasCurrent {
		return nil
	}
	for i := range m.notifications {
		if m.notifications[i].ID == m.currentID {
			return &m.notifications[i]
		}
	}
	return nil
}

func (m *Machine) snoozeActiveLocked() bool {
	return !m.snoozeUntil.IsZero() && m.now().Before(m.snoozeUntil)
}

// policyLocked derives restriction policy from current state. Policy is
// never stored independently.
func (m *Machine) policyLocked() restriction.Policy {
	return restriction.Derive(m.currentLocked(), m.snoozeActiveLocked())
}

// Snapshot is a copy of the machine state for rendering and status.
type Snapshot struct {
	Phase       Phase
	Current     *api.Notification
	Pending     []api.Notification
	SnoozeUntil time.Time
	SnoozeUsed  bool
	Policy      restriction.Policy
}

// Snapshot returns a consistent copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Phase:       Idle,
		Pending:     slices.Clone(m.notifications),
		SnoozeUntil: m.snoozeUntil,
		SnoozeUsed:  m.snoozeUsed,
		Policy:      m.policyLocked(),
	}
	if cur := m.currentLocked(); cur != nil {
		c := *cur
		snap.Current = &c
		snap.Phase = Active
		if m.snoozeActiveLocked() {
			snap.Phase = Snoozed
		}
	}
	return snap
}

// dedupeByID keeps the first occurrence of each id, preserving order.
func dedupeByID(list []api.Notification) []api.Notification {
	if len(list) < 2 {
		return slices.Clone(list)
	}
	seen := make(map[string]bool, len(list))
	out := make([]api.Notification, 0, len(list))
	for _, n := range list {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}
