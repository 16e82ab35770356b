package restriction

import (
	"testing"

	"github.com/focusguard/agent/pkg/api"
)

func TestDeriveUnrestrictedWithoutNotification(t *testing.T) {
	p := Derive(nil, false)
	if p.Blocked || len(p.AllowedWebsites) != 0 {
		t.Errorf("policy = %+v, want unrestricted", p)
	}
}

func TestDeriveUnrestrictedDuringSnooze(t *testing.T) {
	n := &api.Notification{ID: "1", AllowBrowserUsage: false}
	p := Derive(n, true)
	if p.Blocked {
		t.Error("snooze must lift restrictions even for a blocking notification")
	}
}

func TestDeriveBlocksWhenBrowserUsageForbidden(t *testing.T) {
	n := &api.Notification{ID: "1", AllowBrowserUsage: false}
	p := Derive(n, false)
	if !p.Blocked {
		t.Error("policy not blocked for allowBrowserUsage=false")
	}
}

func TestDeriveRestrictsToAllowedSet(t *testing.T) {
	n := &api.Notification{
		ID:                "1",
		AllowBrowserUsage: true,
		AllowedWebsites:   []string{"school.example.com", "https://docs.example.org/page"},
	}
	p := Derive(n, false)
	if p.Blocked {
		t.Fatal("policy blocked despite allowBrowserUsage=true")
	}
	if len(p.AllowedWebsites) != 2 {
		t.Fatalf("allowed set = %v", p.AllowedWebsites)
	}

	cases := map[string]bool{
		"school.example.com":             true,
		"https://school.example.com/x":   true,
		"www.school.example.com":         true,
		"sub.school.example.com":         true,
		"docs.example.org":               true,
		"other.example.net":              false,
		"school.example.com.evil.com":    false,
	}
	for site, want := range cases {
		if got := p.Allows(site); got != want {
			t.Errorf("Allows(%q) = %v, want %v", site, got, want)
		}
	}
}

func TestDeriveEmptyAllowedSetMeansUnrestrictedBrowsing(t *testing.T) {
	n := &api.Notification{ID: "1", AllowBrowserUsage: true}
	p := Derive(n, false)
	if p.Blocked {
		t.Fatal("policy blocked")
	}
	if !p.Allows("anything.example.com") {
		t.Error("empty allowed set must permit any website")
	}
}

func TestBlockedPolicyAllowsNothing(t *testing.T) {
	p := Policy{Blocked: true}
	if p.Allows("example.com") {
		t.Error("blocked policy allowed a website")
	}
}

func TestApplierSuppressesDuplicatePolicies(t *testing.T) {
	var applied []Policy
	a := NewApplier(EnforcerFunc(func(p Policy) error {
		applied = append(applied, p)
		return nil
	}))

	blocked := Policy{Blocked: true}
	a.Apply(blocked)
	a.Apply(blocked)
	a.Apply(Unrestricted())
	a.Apply(Unrestricted())
	a.Apply(blocked)

	if len(applied) != 3 {
		t.Fatalf("enforcer invoked %d times, want 3 (dedupe of repeats)", len(applied))
	}
	if !applied[0].Blocked || applied[1].Blocked || !applied[2].Blocked {
		t.Errorf("applied sequence = %+v", applied)
	}
}

func TestApplierAppliesInitialUnrestrictedPolicy(t *testing.T) {
	count := 0
	a := NewApplier(EnforcerFunc(func(Policy) error {
		count++
		return nil
	}))
	a.Apply(Unrestricted())
	if count != 1 {
		t.Errorf("initial policy applied %d times, want 1", count)
	}
}

func TestApplierCurrentReturnsCopy(t *testing.T) {
	a := NewApplier(nil)
	a.Apply(Policy{AllowedWebsites: []string{"a.example.com"}})
	got := a.Current()
	got.AllowedWebsites[0] = "mutated"
	if a.Current().AllowedWebsites[0] != "a.example.com" {
		t.Error("Current() exposed internal slice")
	}
}
