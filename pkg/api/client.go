package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// Action names understood by the server endpoint.
const (
	actionGetClientNotifications = "getClientNotifications"
	actionGetNotifications       = "getNotifications"
	actionCompleteNotification   = "completeNotification"
	actionRequestWebsite         = "requestWebsite"
	actionRequestUninstall       = "requestUninstall"
	actionUninstallSpecific      = "uninstallSpecificClient"
	actionUninstallAll           = "uninstallAllClients"
	actionRegisterClient         = "registerClient"
	actionValidateKey            = "validateInstallationKey"
	actionGetVersion             = "get_version"
)

// Client talks to the management server's single JSON endpoint. Every call
// is one attempt with one timeout: retry policy belongs to the caller, and
// the polling contract forbids it outright.
type Client struct {
	endpoint   string
	clientID   string
	adminToken string
	httpClient *http.Client
}

// NewClient creates a client for the given server. clientID may be empty
// for unregistered calls (registerClient, validateInstallationKey, admin
// actions).
func NewClient(serverURL, clientID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(serverURL, "/") + "/api",
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetAdminToken attaches the admin credential used by the admin-scoped
// uninstall actions.
func (c *Client) SetAdminToken(token string) {
	c.adminToken = token
}

// ClientID returns the identity this client was built with.
func (c *Client) ClientID() string {
	return c.clientID
}

// envelope is the common response shape: every response carries success,
// and failures carry a human-readable message.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// call POSTs an action payload and decodes the response body into out
// (which may be nil when only success matters). The body is decoded twice:
// once for the envelope, once for the action-specific fields.
func (c *Client) call(ctx context.Context, action string, fields map[string]any, out any) error {
	payload := map[string]any{"action": action}
	for k, v := range fields {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &ProtocolError{Action: action, Detail: "encode request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &ProtocolError{Action: action, Detail: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &ProtocolError{Action: action, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Action: action, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ProtocolError{Action: action, Detail: "malformed response body"}
	}
	if !env.Success {
		return &ServerError{Action: action, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &ProtocolError{Action: action, Detail: "malformed response payload"}
		}
	}
	return nil
}

// recordList tolerates both field names the server uses for notification
// lists.
type recordList struct {
	Data          []Notification `json:"data"`
	Notifications []Notification `json:"notifications"`
}

func (l recordList) records() []Notification {
	if l.Data != nil {
		return l.Data
	}
	return l.Notifications
}

// GetClientNotifications fetches the client-scoped feed and decodes it,
// splitting user notifications from pushed uninstall commands.
func (c *Client) GetClientNotifications(ctx context.Context) (Feed, error) {
	var list recordList
	err := c.call(ctx, actionGetClientNotifications, map[string]any{
		"clientId": c.clientID,
	}, &list)
	if err != nil {
		return Feed{}, err
	}
	return DecodeFeed(list.records()), nil
}

// GetNotifications fetches the admin-scoped feed (no client identity). The
// server must never include sentinel command records here; if one shows up
// the feed is rejected rather than silently filtered.
func (c *Client) GetNotifications(ctx context.Context) ([]Notification, error) {
	var list recordList
	if err := c.call(ctx, actionGetNotifications, nil, &list); err != nil {
		return nil, err
	}
	records := list.records()
	for _, rec := range records {
		if isSentinel(rec) {
			return nil, &ProtocolError{
				Action: actionGetNotifications,
				Detail: "admin feed contains a command sentinel record",
			}
		}
	}
	return records, nil
}

// CompleteNotification marks a notification as completed server-side.
func (c *Client) CompleteNotification(ctx context.Context, notificationID string) error {
	return c.call(ctx, actionCompleteNotification, map[string]any{
		"clientId":       c.clientID,
		"notificationId": notificationID,
	}, nil)
}

// RequestWebsite asks the server to allow-list a website for this client.
func (c *Client) RequestWebsite(ctx context.Context, website string) error {
	return c.call(ctx, actionRequestWebsite, map[string]any{
		"clientId": c.clientID,
		"website":  website,
	}, nil)
}

// RequestUninstall submits an uninstall request with its reason and
// explanation. The decision reports whether the server auto-approved it.
func (c *Client) RequestUninstall(ctx context.Context, req UninstallRequest) (*UninstallDecision, error) {
	var decision UninstallDecision
	err := c.call(ctx, actionRequestUninstall, map[string]any{
		"clientId":    c.clientID,
		"macAddress":  req.MACAddress,
		"installPath": req.InstallPath,
		"keyId":       req.KeyID,
		"reason":      req.Reason,
		"explanation": req.Explanation,
	}, &decision)
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// UninstallSpecificClient pushes an uninstall command to one client.
// Admin-authenticated.
func (c *Client) UninstallSpecificClient(ctx context.Context, clientID, reason string) error {
	return c.call(ctx, actionUninstallSpecific, map[string]any{
		"adminToken": c.adminToken,
		"clientId":   clientID,
		"reason":     reason,
	}, nil)
}

// UninstallAllClients pushes an uninstall command to every client.
// Admin-authenticated.
func (c *Client) UninstallAllClients(ctx context.Context, reason string) error {
	return c.call(ctx, actionUninstallAll, map[string]any{
		"adminToken": c.adminToken,
		"reason":     reason,
	}, nil)
}

// RegisterClient registers this installation and returns the issued
// identity.
func (c *Client) RegisterClient(ctx context.Context, reg Registration) (*RegistrationResult, error) {
	var result RegistrationResult
	err := c.call(ctx, actionRegisterClient, map[string]any{
		"installationKey": reg.InstallationKey,
		"hostname":        reg.Hostname,
		"osType":          reg.OSType,
		"osVersion":       reg.OSVersion,
		"architecture":    reg.Architecture,
		"macAddress":      reg.MACAddress,
		"installPath":     reg.InstallPath,
		"agentVersion":    reg.AgentVersion,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateInstallationKey checks an installation key with the server.
func (c *Client) ValidateInstallationKey(ctx context.Context, key string) error {
	return c.call(ctx, actionValidateKey, map[string]any{
		"installationKey": key,
	}, nil)
}

// GetVersion fetches the latest published agent version and update policy.
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := c.call(ctx, actionGetVersion, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
