package config

import (
	"os"
	"strconv"
)

// FromEnv overlays UMOD4_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("UMOD4_MOUNT_DIR"); v != "" {
		cfg.MountDir = v
	}
	if v := os.Getenv("UMOD4_FILE_PREFIX"); v != "" {
		cfg.FilePrefix = v
	}
	if v := os.Getenv("UMOD4_FILE_EXT"); v != "" {
		cfg.FileExt = v
	}
	if v := os.Getenv("UMOD4_BUFFER_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BufferBytes = n
		}
	}
	if v := os.Getenv("UMOD4_BLOCK_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.BlockSize = uint32(n)
		}
	}
	if v := os.Getenv("UMOD4_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PollIntervalMs = n
		}
	}
	if v := os.Getenv("UMOD4_WATCH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WatchIntervalMs = n
		}
	}
	if v := os.Getenv("UMOD4_DEVICE_IMAGE"); v != "" {
		cfg.DeviceImage = v
	}
	if v := os.Getenv("UMOD4_DEVICE_BLOCKS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.DeviceBlocks = uint32(n)
		}
	}
	if v := os.Getenv("UMOD4_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("UMOD4_COMPANION_PATH"); v != "" {
		cfg.CompanionPath = v
	}
	if v := os.Getenv("UMOD4_COMPANION_ID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.CompanionID = uint8(n)
		}
	}
	if v := os.Getenv("UMOD4_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("UMOD4_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
