package run

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
	cfgpkg "github.com/mookiedog/umod4-sub001/internal/config"
	"github.com/mookiedog/umod4-sub001/internal/datalog"
	"github.com/mookiedog/umod4-sub001/internal/media"
	"github.com/mookiedog/umod4-sub001/internal/metrics"
	logpkg "github.com/mookiedog/umod4-sub001/pkg/log"
)

// Options configures the daemon.
type Options struct {
	Config cfgpkg.Config
}

// Run starts the pipeline and blocks until ctx is cancelled or a signal
// arrives.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context; layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if cfg.LogFormat == "json" {
		formatter = &logpkg.JSONFormatter{}
	}
	procLogger := logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("starting telemetry logger",
		logpkg.Str("mount_dir", cfg.MountDir),
		logpkg.Int("buffer_bytes", cfg.BufferBytes),
		logpkg.Uint32("block_size", cfg.BlockSize),
		logpkg.Str("metrics", cfg.MetricsAddr),
		logpkg.Str("level", cfg.LogLevel),
		logpkg.Str("format", cfg.LogFormat),
	)

	tlog, err := datalog.New(datalog.Options{
		BufferBytes:  cfg.BufferBytes,
		FilePrefix:   cfg.FilePrefix,
		FileExt:      cfg.FileExt,
		PollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		Logger:       procLogger,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup

	// A device image mounts once at startup through the raw block surface;
	// otherwise the watcher polls the mount directory for hot-plug events.
	if cfg.DeviceImage != "" {
		dev, err := blockfs.OpenFileDevice(cfg.DeviceImage, cfg.BlockSize, cfg.DeviceBlocks)
		if err != nil {
			return err
		}
		defer dev.Close()
		vol, err := blockfs.OpenDevice(dev)
		if err != nil {
			return err
		}
		tlog.Bridge().OnMediaReady(vol)
		procLogger.Info("device image mounted",
			logpkg.Str("path", cfg.DeviceImage),
			logpkg.Uint32("blocks", cfg.DeviceBlocks))
	} else {
		watcher, err := media.NewWatcher(media.WatcherOptions{
			Bridge:    tlog.Bridge(),
			Path:      cfg.MountDir,
			BlockSize: cfg.BlockSize,
			Interval:  time.Duration(cfg.WatchIntervalMs) * time.Millisecond,
			Logger:    procLogger,
		})
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Run(sctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		tlog.Run(sctx)
	}()

	if cfg.CompanionPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pumpCompanion(sctx, tlog, cfg, procLogger)
		}()
	}

	if cfg.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(sctx, cfg.MetricsAddr, tlog, procLogger); err != nil && sctx.Err() == nil {
				procLogger.Error("metrics server failed", logpkg.Err(err))
			}
		}()
	}

	<-sctx.Done()
	wg.Wait()

	s := tlog.Stats()
	procLogger.Info("telemetry logger stopped",
		logpkg.Uint64("records_accepted", s.Ring.AcceptedRecords),
		logpkg.Uint64("records_dropped", s.Ring.DroppedRecords),
		logpkg.Uint64("bytes_written", s.Writer.BytesWritten),
		logpkg.Uint64("files_opened", s.Writer.FilesOpened),
	)
	return nil
}

// pumpCompanion streams bytes from the companion path into the log,
// reopening the path if the stream ends or fails while the daemon runs.
func pumpCompanion(ctx context.Context, tlog *datalog.Logger, cfg cfgpkg.Config, logger logpkg.Logger) {
	log := logger.WithComponent("companion")
	for ctx.Err() == nil {
		f, err := os.Open(cfg.CompanionPath)
		if err != nil {
			log.Warn("companion stream unavailable", logpkg.Str("path", cfg.CompanionPath), logpkg.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		log.Info("companion stream open", logpkg.Str("path", cfg.CompanionPath))
		err = tlog.Pump(ctx, f, cfg.CompanionID)
		f.Close()
		if err != nil && ctx.Err() == nil {
			log.Warn("companion stream ended", logpkg.Err(err))
		}
	}
}
