package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datadash-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set datadash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "backend_base_url: %s\n", cfg.BackendBaseURL)
		fmt.Fprintf(out, "upload_timeout_sec: %d\n", int(cfg.UploadTimeout().Seconds()))
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadBytes()>>20)
		fmt.Fprintf(out, "probe_interval_sec: %d\n", int(cfg.ProbeInterval().Seconds()))
		fmt.Fprintf(out, "probe_timeout_sec: %d\n", int(cfg.ProbeTimeout().Seconds()))
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "export_dir: %s\n", cfg.ExportDir)
		fmt.Fprintf(out, "preview_rows: %d\n", cfg.PreviewRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "backend_base_url":
			u, err := url.Parse(val)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid backend_base_url: %s (use http://host:port)", val)
			}
			cfg.BackendBaseURL = strings.TrimRight(val, "/")
		case "upload_timeout_sec":
			return setPositiveInt(cmd, key, val, &cfg.UploadTimeoutSec)
		case "max_upload_mb":
			return setPositiveInt(cmd, key, val, &cfg.MaxUploadMB)
		case "probe_interval_sec":
			return setPositiveInt(cmd, key, val, &cfg.ProbeIntervalSec)
		case "probe_timeout_sec":
			return setPositiveInt(cmd, key, val, &cfg.ProbeTimeoutSec)
		case "preview_rows":
			return setPositiveInt(cmd, key, val, &cfg.PreviewRows)
		case "listen_addr":
			cfg.ListenAddr = val
		case "export_dir":
			cfg.ExportDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		return saveConfig(cmd)
	},
}

func setPositiveInt(cmd *cobra.Command, key, val string, dst *int) error {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	*dst = i
	return saveConfig(cmd)
}

func saveConfig(cmd *cobra.Command) error {
	if err := cfgpkg.Save(cfg, cfgFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
