package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusguard/agent/pkg/api"
)

var (
	adminToken  string
	adminReason string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative server operations",
	Long:  "Administrative operations against the FocusGuard server. All subcommands require an admin token.",
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications visible to administrators",
	Run: func(cmd *cobra.Command, args []string) {
		listNotifications()
	},
}

var adminUninstallClientCmd = &cobra.Command{
	Use:   "uninstall-client <client-id>",
	Short: "Push an uninstall command to one client",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		adminUninstall(args[0])
	},
}

var adminUninstallAllCmd = &cobra.Command{
	Use:   "uninstall-all",
	Short: "Push an uninstall command to every client",
	Run: func(cmd *cobra.Command, args []string) {
		adminUninstall("")
	},
}

func init() {
	adminCmd.PersistentFlags().StringVar(&adminToken, "token", "", "admin API token")
	adminCmd.MarkPersistentFlagRequired("token")

	adminUninstallClientCmd.Flags().StringVar(&adminReason, "reason", "", "reason recorded with the uninstall")
	adminUninstallAllCmd.Flags().StringVar(&adminReason, "reason", "", "reason recorded with the uninstall")

	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminUninstallClientCmd)
	adminCmd.AddCommand(adminUninstallAllCmd)
}

func newAdminClient() *api.Client {
	cfg, err := loadConfig()
	if err != nil || cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Server URL required. Use --server flag or set in config.")
		os.Exit(1)
	}
	client := newAPIClient(cfg)
	client.SetAdminToken(adminToken)
	return client
}

func listNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notifications, err := newAdminClient().GetNotifications(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return
	}
	for _, n := range notifications {
		fmt.Printf("[%d] %s  %s  (%s)\n", n.Priority, n.ID, n.Title, n.Status)
	}
}

func adminUninstall(clientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newAdminClient()
	var err error
	if clientID == "" {
		err = client.UninstallAllClients(ctx, adminReason)
	} else {
		err = client.UninstallSpecificClient(ctx, clientID, adminReason)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Uninstall command failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Uninstall command queued.")
}
