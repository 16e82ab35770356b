// Package restriction derives browser access policy from the active
// notification. The derivation is a pure function; actual browser control
// lives behind the Enforcer interface.
package restriction

import (
	"slices"
	"strings"
	"sync"

	"github.com/focusguard/agent/internal/logging"
	"github.com/focusguard/agent/pkg/api"
)

var log = logging.L("restriction")

// Policy is the declared browser access state.
type Policy struct {
	Blocked         bool
	AllowedWebsites []string
}

// Unrestricted is the policy with no active notification or an active
// snooze.
func Unrestricted() Policy {
	return Policy{}
}

// Derive computes policy from the current notification and snooze state.
// No notification or an active snooze means unrestricted; a notification
// that forbids browser usage blocks everything; otherwise browsing is
// limited to the allowed set (empty set means unrestricted browsing).
func Derive(current *api.Notification, snoozeActive bool) Policy {
	if current == nil || snoozeActive {
		return Unrestricted()
	}
	if !current.AllowBrowserUsage {
		return Policy{Blocked: true}
	}
	return Policy{AllowedWebsites: slices.Clone(current.AllowedWebsites)}
}

// Equal reports whether two policies declare the same state.
func (p Policy) Equal(other Policy) bool {
	return p.Blocked == other.Blocked && slices.Equal(p.AllowedWebsites, other.AllowedWebsites)
}

// Allows reports whether the given website may be opened under this policy.
func (p Policy) Allows(website string) bool {
	if p.Blocked {
		return false
	}
	if len(p.AllowedWebsites) == 0 {
		return true
	}
	host := normalizeHost(website)
	for _, allowed := range p.AllowedWebsites {
		a := normalizeHost(allowed)
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

// normalizeHost reduces a URL or hostname to a comparable host: scheme,
// path, port, and a leading www. are stripped.
func normalizeHost(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "]") {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

// Enforcer receives declared policy. The shipped implementation only
// announces it; real browser control is an external collaborator.
type Enforcer interface {
	Apply(Policy) error
}

// EnforcerFunc adapts a function to the Enforcer interface.
type EnforcerFunc func(Policy) error

func (f EnforcerFunc) Apply(p Policy) error { return f(p) }

// Applier forwards policy changes to an Enforcer, suppressing repeats so
// re-deriving the same policy across polls is not observable as a new side
// effect.
type Applier struct {
	mu       sync.Mutex
	enforcer Enforcer
	current  Policy
	applied  bool
}

func NewApplier(e Enforcer) *Applier {
	return &Applier{enforcer: e}
}

// Apply declares a policy. Equal consecutive policies are skipped.
func (a *Applier) Apply(p Policy) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.applied && a.current.Equal(p) {
		return
	}
	a.current = p
	a.applied = true

	if a.enforcer != nil {
		if err := a.enforcer.Apply(p); err != nil {
			log.Error("policy enforcement failed", "error", err)
			return
		}
	}
	log.Info("browser policy applied", "blocked", p.Blocked, "allowedWebsites", len(p.AllowedWebsites))
}

// Current returns the last declared policy.
func (a *Applier) Current() Policy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Policy{Blocked: a.current.Blocked, AllowedWebsites: slices.Clone(a.current.AllowedWebsites)}
}
