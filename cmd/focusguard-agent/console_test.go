package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/focusguard/agent/internal/restriction"
	"github.com/focusguard/agent/internal/state"
)

func TestPolicyLineDistinguishesThreeStates(t *testing.T) {
	tests := []struct {
		name   string
		policy restriction.Policy
		want   string
	}{
		{
			name:   "fully blocked",
			policy: restriction.Policy{Blocked: true},
			want:   "Browser blocked.",
		},
		{
			name:   "limited to allow-list",
			policy: restriction.Policy{AllowedWebsites: []string{"school.example.com", "docs.example.org"}},
			want:   "Browser limited to: school.example.com, docs.example.org",
		},
		{
			name:   "unrestricted",
			policy: restriction.Policy{},
			want:   "Browser unrestricted.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policyLine(tt.policy); got != tt.want {
				t.Errorf("policyLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnoozeFailureLineStatesSessionScope(t *testing.T) {
	got := snoozeFailureLine(state.ErrSnoozeUsed)
	if !strings.Contains(got, "session") {
		t.Errorf("spent-snooze message %q should say the session, not the notification, spent it", got)
	}
	if strings.Contains(got, "notification") {
		t.Errorf("spent-snooze message %q wrongly scopes snooze to the notification", got)
	}

	if got := snoozeFailureLine(state.ErrNoCurrent); got != "Nothing to snooze." {
		t.Errorf("no-current message = %q", got)
	}

	if got := snoozeFailureLine(errors.New("boom")); !strings.Contains(got, "boom") {
		t.Errorf("generic failure %q should carry the underlying error", got)
	}
}
