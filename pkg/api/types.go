package api

import "strings"

// Reserved message literals the server uses to push uninstall commands
// through the client-scoped notification feed. They are decoded here, at
// the transport boundary, and never leak past DecodeFeed.
const (
	sentinelUninstallSpecific = "__UNINSTALL_SPECIFIC_COMMAND__"
	sentinelUninstallAll      = "__UNINSTALL_ALL_COMMAND__"
	sentinelPrefix            = "__UNINSTALL_"
)

// Notification statuses as known server-side. The client only ever acts on
// pending records; completed ones are dropped during decode.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Notification is a server-issued notification record.
type Notification struct {
	ID                string   `json:"id"`
	Title             string   `json:"title,omitempty"`
	Message           string   `json:"message"`
	Priority          int      `json:"priority"`
	Status            string   `json:"status,omitempty"`
	AllowBrowserUsage bool     `json:"allowBrowserUsage"`
	AllowedWebsites   []string `json:"allowedWebsites,omitempty"`
}

// UninstallScope identifies which clients a pushed uninstall command targets.
type UninstallScope int

const (
	ScopeSpecific UninstallScope = iota // this client only
	ScopeAll                            // every client
)

func (s UninstallScope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "specific"
}

// Feed is the decoded client-scoped notification feed: user content split
// from operator commands so downstream logic never matches on message
// literals.
type Feed struct {
	Notifications []Notification
	Uninstalls    []UninstallScope
}

// DecodeFeed splits raw records into user notifications and uninstall
// commands. Sentinel records are recognized before the status filter so a
// pushed command always takes effect; completed user records are dropped.
// Order within each list follows the server-provided order.
func DecodeFeed(records []Notification) Feed {
	var feed Feed
	for _, rec := range records {
		switch rec.Message {
		case sentinelUninstallSpecific:
			feed.Uninstalls = append(feed.Uninstalls, ScopeSpecific)
		case sentinelUninstallAll:
			feed.Uninstalls = append(feed.Uninstalls, ScopeAll)
		default:
			if strings.EqualFold(rec.Status, StatusCompleted) {
				continue
			}
			feed.Notifications = append(feed.Notifications, rec)
		}
	}
	return feed
}

// isSentinel reports whether a record smuggles an operator command. Used to
// enforce the admin-feed contract: sentinels are only ever valid in
// client-scoped feeds.
func isSentinel(rec Notification) bool {
	return strings.HasPrefix(rec.Message, sentinelPrefix)
}

// UninstallRequest is the two-phase uninstall submission. Metadata fields
// are opaque pass-through identifying the installation server-side.
type UninstallRequest struct {
	MACAddress  string `json:"macAddress"`
	InstallPath string `json:"installPath"`
	KeyID       string `json:"keyId"`
	Reason      string `json:"reason"`
	Explanation string `json:"explanation"`
}

// UninstallDecision is the server's answer to a requestUninstall call.
type UninstallDecision struct {
	AutoApproved bool `json:"autoApproved"`
}

// Registration carries client identity and platform metadata for
// registerClient.
type Registration struct {
	InstallationKey string `json:"installationKey"`
	Hostname        string `json:"hostname"`
	OSType          string `json:"osType"`
	OSVersion       string `json:"osVersion"`
	Architecture    string `json:"architecture"`
	MACAddress      string `json:"macAddress"`
	InstallPath     string `json:"installPath"`
	AgentVersion    string `json:"agentVersion,omitempty"`
}

// RegistrationResult is the server's answer to registerClient.
type RegistrationResult struct {
	ClientID          string `json:"clientId"`
	KeyID             string `json:"keyId"`
	IsNewInstallation bool   `json:"isNewInstallation"`
}

// VersionInfo is the server's answer to get_version.
type VersionInfo struct {
	LatestVersion     string `json:"latestVersion"`
	ForceUpdate       bool   `json:"forceUpdate"`
	AutoUpdateEnabled bool   `json:"autoUpdateEnabled"`
}
