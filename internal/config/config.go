package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// MountDir is the removable-media mount path the watcher polls.
	MountDir string `json:"mountDir" yaml:"mountDir"`
	// FilePrefix and FileExt frame sequential log file names.
	FilePrefix string `json:"filePrefix" yaml:"filePrefix"`
	FileExt    string `json:"fileExt" yaml:"fileExt"`
	// BufferBytes is the ring buffer capacity.
	BufferBytes int `json:"bufferBytes" yaml:"bufferBytes"`
	// BlockSize is the logical storage block size driving flush alignment.
	BlockSize uint32 `json:"blockSize" yaml:"blockSize"`
	// PollIntervalMs bounds the writer's wait-for-data sleep.
	PollIntervalMs int `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	// WatchIntervalMs is the hot-plug poll cadence.
	WatchIntervalMs int `json:"watchIntervalMs" yaml:"watchIntervalMs"`
	// DeviceImage, when non-empty, mounts a raw block-device image at that
	// path instead of watching MountDir; DeviceBlocks is the image geometry.
	DeviceImage  string `json:"deviceImage" yaml:"deviceImage"`
	DeviceBlocks uint32 `json:"deviceBlocks" yaml:"deviceBlocks"`
	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string `json:"metricsAddr" yaml:"metricsAddr"`
	// CompanionPath streams companion-processor bytes into the log when set
	// (a serial device or FIFO path).
	CompanionPath string `json:"companionPath" yaml:"companionPath"`
	// CompanionID is the six-bit record id tagging companion stream records.
	CompanionID uint8 `json:"companionId" yaml:"companionId"`
	// LogLevel and LogFormat configure diagnostic output.
	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		MountDir:        DefaultMountDir(),
		FilePrefix:      "log_",
		FileExt:         ".dat",
		BufferBytes:     64 << 10,
		BlockSize:       512,
		PollIntervalMs:  25,
		WatchIntervalMs: 250,
		DeviceBlocks:    32768,
		CompanionID:     0x02,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Validate rejects geometry the pipeline cannot run on. The daemon calls it
// once at startup, after every overlay has been applied.
func (c Config) Validate() error {
	if c.BlockSize < blockfs.MinBlockSize {
		return fmt.Errorf("config: blockSize %d below minimum %d", c.BlockSize, blockfs.MinBlockSize)
	}
	// The ring sacrifices one slot, so a full flush window of blockSize bytes
	// is only ever reachable when the buffer is strictly larger than a block.
	if c.BufferBytes <= int(c.BlockSize) {
		return fmt.Errorf("config: bufferBytes %d must exceed blockSize %d", c.BufferBytes, c.BlockSize)
	}
	if c.DeviceImage != "" && c.DeviceBlocks < 2 {
		return fmt.Errorf("config: deviceBlocks %d leaves no data blocks", c.DeviceBlocks)
	}
	return nil
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
