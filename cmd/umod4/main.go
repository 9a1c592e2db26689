package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	runcmd "github.com/mookiedog/umod4-sub001/internal/cmd/run"
	cfgpkg "github.com/mookiedog/umod4-sub001/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "umod4",
		Short: "Vehicle telemetry data logger",
		Long:  "umod4 ingests telemetry records into a ring buffer and appends them durably to removable storage.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the logger daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)

			// Flags override file and environment when set.
			if cmd.Flags().Changed("mount-dir") {
				cfg.MountDir, _ = cmd.Flags().GetString("mount-dir")
			}
			if cmd.Flags().Changed("file-prefix") {
				cfg.FilePrefix, _ = cmd.Flags().GetString("file-prefix")
			}
			if cmd.Flags().Changed("file-ext") {
				cfg.FileExt, _ = cmd.Flags().GetString("file-ext")
			}
			if cmd.Flags().Changed("buffer-bytes") {
				cfg.BufferBytes, _ = cmd.Flags().GetInt("buffer-bytes")
			}
			if cmd.Flags().Changed("block-size") {
				cfg.BlockSize, _ = cmd.Flags().GetUint32("block-size")
			}
			if cmd.Flags().Changed("poll-ms") {
				cfg.PollIntervalMs, _ = cmd.Flags().GetInt("poll-ms")
			}
			if cmd.Flags().Changed("watch-ms") {
				cfg.WatchIntervalMs, _ = cmd.Flags().GetInt("watch-ms")
			}
			if cmd.Flags().Changed("device-image") {
				cfg.DeviceImage, _ = cmd.Flags().GetString("device-image")
			}
			if cmd.Flags().Changed("device-blocks") {
				cfg.DeviceBlocks, _ = cmd.Flags().GetUint32("device-blocks")
			}
			if cmd.Flags().Changed("metrics") {
				cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics")
			}
			if cmd.Flags().Changed("companion") {
				cfg.CompanionPath, _ = cmd.Flags().GetString("companion")
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
			}

			if err := runcmd.Run(context.Background(), runcmd.Options{Config: cfg}); err != nil {
				return fmt.Errorf("logger error: %w", err)
			}
			return nil
		},
	}
	runCmd.Flags().String("config", "", "Config file path (JSON or YAML)")
	runCmd.Flags().String("mount-dir", "", "Removable-media mount path to watch")
	runCmd.Flags().String("file-prefix", "log_", "Log file name prefix")
	runCmd.Flags().String("file-ext", ".dat", "Log file name extension")
	runCmd.Flags().Int("buffer-bytes", 64<<10, "Ring buffer capacity in bytes")
	runCmd.Flags().Uint32("block-size", 512, "Storage block size in bytes")
	runCmd.Flags().Int("poll-ms", 25, "Writer wait-for-data poll interval in ms")
	runCmd.Flags().Int("watch-ms", 250, "Hot-plug poll interval in ms")
	runCmd.Flags().String("device-image", "", "Block-device image to mount instead of watching the mount dir (optional)")
	runCmd.Flags().Uint32("device-blocks", 32768, "Device image geometry in blocks")
	runCmd.Flags().String("metrics", "", "Prometheus metrics listen address (optional)")
	runCmd.Flags().String("companion", "", "Companion byte-stream path (serial device or FIFO, optional)")
	runCmd.Flags().String("log-level", os.Getenv("UMOD4_LOG_LEVEL"), "Log level: debug|info|warn|error")
	runCmd.Flags().String("log-format", os.Getenv("UMOD4_LOG_FORMAT"), "Log format: text|json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
