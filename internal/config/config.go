package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	ClientID              string `mapstructure:"client_id"`
	KeyID                 string `mapstructure:"key_id"`
	InstallationKey       string `mapstructure:"installation_key"`
	ServerURL             string `mapstructure:"server_url"`
	MACAddress            string `mapstructure:"mac_address"`
	InstallPath           string `mapstructure:"install_path"`
	PollIntervalSeconds   int    `mapstructure:"poll_interval_seconds"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	UpdateCheckMinutes    int    `mapstructure:"update_check_minutes"`
	LogLevel              string `mapstructure:"log_level"`
	LogFormat             string `mapstructure:"log_format"`
}

func Default() *Config {
	return &Config{
		PollIntervalSeconds:   10,
		RequestTimeoutSeconds: 15,
		UpdateCheckMinutes:    60,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FOCUSGUARD")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("client_id", cfg.ClientID)
	viper.Set("key_id", cfg.KeyID)
	viper.Set("installation_key", cfg.InstallationKey)
	viper.Set("server_url", cfg.ServerURL)
	viper.Set("mac_address", cfg.MACAddress)
	viper.Set("install_path", cfg.InstallPath)
	viper.Set("poll_interval_seconds", cfg.PollIntervalSeconds)
	viper.Set("request_timeout_seconds", cfg.RequestTimeoutSeconds)
	viper.Set("update_check_minutes", cfg.UpdateCheckMinutes)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "agent.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	// Restrict config file to owner-only access (contains the installation key)
	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "FocusGuard")
	case "darwin":
		return "/Library/Application Support/FocusGuard"
	default:
		return "/etc/focusguard"
	}
}
