package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.FilePrefix != "log_" || cfg.FileExt != ".dat" {
		t.Fatalf("file naming defaults: %q %q", cfg.FilePrefix, cfg.FileExt)
	}
	if cfg.BlockSize != 512 {
		t.Fatalf("block size default: %d", cfg.BlockSize)
	}
	if cfg.BufferBytes != 64<<10 {
		t.Fatalf("buffer default: %d", cfg.BufferBytes)
	}
	if cfg.MountDir == "" {
		t.Fatalf("mount dir must never be empty")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("empty path should yield defaults")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	body := `{"mountDir":"/tmp/card","bufferBytes":4096,"logLevel":"debug"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MountDir != "/tmp/card" {
		t.Fatalf("mountDir = %q", cfg.MountDir)
	}
	if cfg.BufferBytes != 4096 {
		t.Fatalf("bufferBytes = %d", cfg.BufferBytes)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("logLevel = %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.BlockSize != 512 {
		t.Fatalf("blockSize should default, got %d", cfg.BlockSize)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "mountDir: /tmp/card\nblockSize: 4096\nfilePrefix: run_\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BlockSize != 4096 {
		t.Fatalf("blockSize = %d", cfg.BlockSize)
	}
	if cfg.FilePrefix != "run_" {
		t.Fatalf("filePrefix = %q", cfg.FilePrefix)
	}
	if cfg.FileExt != ".dat" {
		t.Fatalf("fileExt should default, got %q", cfg.FileExt)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("UMOD4_MOUNT_DIR", "/env/card")
	t.Setenv("UMOD4_BUFFER_BYTES", "1024")
	t.Setenv("UMOD4_COMPANION_ID", "7")
	t.Setenv("UMOD4_BLOCK_SIZE", "not-a-number")

	cfg := Default()
	FromEnv(&cfg)

	if cfg.MountDir != "/env/card" {
		t.Fatalf("mountDir = %q", cfg.MountDir)
	}
	if cfg.BufferBytes != 1024 {
		t.Fatalf("bufferBytes = %d", cfg.BufferBytes)
	}
	if cfg.CompanionID != 7 {
		t.Fatalf("companionId = %d", cfg.CompanionID)
	}
	// Unparseable values are ignored.
	if cfg.BlockSize != 512 {
		t.Fatalf("blockSize = %d", cfg.BlockSize)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	// A block size this small breaks the chained-layout window arithmetic.
	cfg := Default()
	cfg.BlockSize = 8
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tiny block size")
	}

	// A buffer no larger than one block can never satisfy a full window.
	cfg = Default()
	cfg.BufferBytes = 512
	cfg.BlockSize = 512
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for buffer not exceeding block size")
	}

	cfg = Default()
	cfg.DeviceImage = "/tmp/card.img"
	cfg.DeviceBlocks = 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for device with no data blocks")
	}
}
