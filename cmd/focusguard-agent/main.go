package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusguard/agent/internal/config"
	"github.com/focusguard/agent/internal/sysinfo"
	"github.com/focusguard/agent/pkg/api"
)

var (
	version   = "1.0.0"
	cfgFile   string
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "focusguard-agent",
	Short: "FocusGuard Agent",
	Long:  `FocusGuard Agent - desktop notification and access policy client for Windows, macOS, and Linux`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the agent",
	Run: func(cmd *cobra.Command, args []string) {
		runAgent()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [installation-key]",
	Short: "Register this installation with the FocusGuard server",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		registerClient(key, force)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("FocusGuard Agent v%s\n", version)
		if check, _ := cmd.Flags().GetBool("check"); check {
			checkLatestVersion()
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check agent status",
	Run: func(cmd *cobra.Command, args []string) {
		checkStatus()
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Request removal of this installation",
	Run: func(cmd *cobra.Command, args []string) {
		runUninstall()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "FocusGuard server URL")

	registerCmd.Flags().Bool("force", false, "re-register even if already registered")
	versionCmd.Flags().Bool("check", false, "also query the server for the latest version")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads config and applies the --server override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	cfg.Validate()
	return cfg, nil
}

func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, cfg.ClientID, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
}

func registerClient(key string, force bool) {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.Default()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
	}

	if cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Server URL required. Use --server flag or set in config.")
		os.Exit(1)
	}
	if cfg.ClientID != "" && !force {
		fmt.Printf("Already registered as %s. Use --force to re-register.\n", cfg.ClientID)
		return
	}

	if key == "" {
		key = cfg.InstallationKey
	}
	generated := false
	if key == "" {
		key = sysinfo.NewInstallationKey()
		generated = true
	}

	client := newAPIClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Keys handed to us (installer or operator) are validated first;
	// a freshly generated key is only known server-side after registration.
	if !generated {
		if err := client.ValidateInstallationKey(ctx, key); err != nil {
			fmt.Fprintf(os.Stderr, "Installation key rejected: %v\n", err)
			os.Exit(1)
		}
	}

	info := sysinfo.Collect()
	result, err := client.RegisterClient(ctx, api.Registration{
		InstallationKey: key,
		Hostname:        info.Hostname,
		OSType:          info.OSType,
		OSVersion:       info.OSVersion,
		Architecture:    info.Architecture,
		MACAddress:      info.MACAddress,
		InstallPath:     info.InstallPath,
		AgentVersion:    version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Registration failed: %v\n", err)
		os.Exit(1)
	}

	cfg.ClientID = result.ClientID
	cfg.KeyID = result.KeyID
	cfg.InstallationKey = key
	cfg.MACAddress = info.MACAddress
	cfg.InstallPath = info.InstallPath
	if err := config.SaveTo(cfg, cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
		os.Exit(1)
	}

	if result.IsNewInstallation {
		fmt.Println("Registration successful!")
	} else {
		fmt.Println("Re-registered existing installation.")
	}
	fmt.Printf("Client ID: %s\n", result.ClientID)
	fmt.Println("Run 'focusguard-agent run' to start the agent.")
}

func checkStatus() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("Status: Not configured")
		return
	}

	if cfg.ClientID == "" {
		fmt.Println("Status: Not registered")
		return
	}

	fmt.Println("Status: Registered")
	fmt.Printf("Client ID: %s\n", cfg.ClientID)
	fmt.Printf("Server: %s\n", cfg.ServerURL)
	if uptime, err := sysinfo.Uptime(); err == nil {
		fmt.Printf("Host uptime: %s\n", uptime.Round(time.Minute))
	}
}

func checkLatestVersion() {
	cfg, err := loadConfig()
	if err != nil || cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Server URL required for --check.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := newAPIClient(cfg).GetVersion(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Version check failed: %v\n", err)
		os.Exit(1)
	}

	if info.LatestVersion == "" || info.LatestVersion == version {
		fmt.Println("Agent is up to date.")
		return
	}
	fmt.Printf("Latest version: %s\n", info.LatestVersion)
	if info.ForceUpdate {
		fmt.Println("This update is required by the server.")
	}
}
