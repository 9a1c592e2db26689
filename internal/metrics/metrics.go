package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mookiedog/umod4-sub001/internal/datalog"
	logpkg "github.com/mookiedog/umod4-sub001/pkg/log"
)

// Collector implements prometheus.Collector over the pipeline's counters.
type Collector struct {
	logger *datalog.Logger

	acceptedRecords *prometheus.Desc
	acceptedBytes   *prometheus.Desc
	droppedRecords  *prometheus.Desc
	droppedBytes    *prometheus.Desc
	bufferInUse     *prometheus.Desc
	bufferCapacity  *prometheus.Desc

	bytesWritten *prometheus.Desc
	filesOpened  *prometheus.Desc
	openErrors   *prometheus.Desc
	writeErrors  *prometheus.Desc
	syncErrors   *prometheus.Desc
	writeCount   *prometheus.Desc
	syncCount    *prometheus.Desc
	writeLatency *prometheus.Desc
	syncLatency  *prometheus.Desc
}

// NewCollector creates a collector reading from the given pipeline.
func NewCollector(l *datalog.Logger) *Collector {
	return &Collector{
		logger: l,
		acceptedRecords: prometheus.NewDesc("umod4_log_records_accepted_total",
			"Records accepted into the ring buffer.", nil, nil),
		acceptedBytes: prometheus.NewDesc("umod4_log_bytes_accepted_total",
			"Bytes accepted into the ring buffer.", nil, nil),
		droppedRecords: prometheus.NewDesc("umod4_log_records_dropped_total",
			"Records dropped because the ring buffer was full.", nil, nil),
		droppedBytes: prometheus.NewDesc("umod4_log_bytes_dropped_total",
			"Bytes dropped because the ring buffer was full.", nil, nil),
		bufferInUse: prometheus.NewDesc("umod4_log_buffer_in_use_bytes",
			"Committed-but-unflushed bytes in the ring buffer.", nil, nil),
		bufferCapacity: prometheus.NewDesc("umod4_log_buffer_capacity_bytes",
			"Ring buffer capacity.", nil, nil),
		bytesWritten: prometheus.NewDesc("umod4_log_bytes_written_total",
			"Bytes written to the active log file.", nil, nil),
		filesOpened: prometheus.NewDesc("umod4_log_files_opened_total",
			"Log files created.", nil, nil),
		openErrors: prometheus.NewDesc("umod4_log_open_errors_total",
			"Log file creation failures.", nil, nil),
		writeErrors: prometheus.NewDesc("umod4_log_write_errors_total",
			"Device write failures.", nil, nil),
		syncErrors: prometheus.NewDesc("umod4_log_sync_errors_total",
			"Durability sync failures.", nil, nil),
		writeCount: prometheus.NewDesc("umod4_log_writes_total",
			"Physical writes issued.", nil, nil),
		syncCount: prometheus.NewDesc("umod4_log_syncs_total",
			"Durability syncs issued.", nil, nil),
		writeLatency: prometheus.NewDesc("umod4_log_write_latency_seconds",
			"Write latency.", []string{"stat"}, nil),
		syncLatency: prometheus.NewDesc("umod4_log_sync_latency_seconds",
			"Sync latency.", []string{"stat"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acceptedRecords
	ch <- c.acceptedBytes
	ch <- c.droppedRecords
	ch <- c.droppedBytes
	ch <- c.bufferInUse
	ch <- c.bufferCapacity
	ch <- c.bytesWritten
	ch <- c.filesOpened
	ch <- c.openErrors
	ch <- c.writeErrors
	ch <- c.syncErrors
	ch <- c.writeCount
	ch <- c.syncCount
	ch <- c.writeLatency
	ch <- c.syncLatency
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.logger.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	counter(c.acceptedRecords, s.Ring.AcceptedRecords)
	counter(c.acceptedBytes, s.Ring.AcceptedBytes)
	counter(c.droppedRecords, s.Ring.DroppedRecords)
	counter(c.droppedBytes, s.Ring.DroppedBytes)
	gauge(c.bufferInUse, float64(s.InUse))
	gauge(c.bufferCapacity, float64(s.Capacity))

	counter(c.bytesWritten, s.Writer.BytesWritten)
	counter(c.filesOpened, s.Writer.FilesOpened)
	counter(c.openErrors, s.Writer.OpenErrors)
	counter(c.writeErrors, s.Writer.WriteErrors)
	counter(c.syncErrors, s.Writer.SyncErrors)
	counter(c.writeCount, s.Writer.Writes.Count)
	counter(c.syncCount, s.Writer.Syncs.Count)

	gauge(c.writeLatency, s.Writer.Writes.Min.Seconds(), "min")
	gauge(c.writeLatency, s.Writer.Writes.Max.Seconds(), "max")
	gauge(c.writeLatency, s.Writer.Writes.Avg.Seconds(), "avg")
	gauge(c.syncLatency, s.Writer.Syncs.Min.Seconds(), "min")
	gauge(c.syncLatency, s.Writer.Syncs.Max.Seconds(), "max")
	gauge(c.syncLatency, s.Writer.Syncs.Avg.Seconds(), "avg")
}

// Serve runs a /metrics endpoint on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, l *datalog.Logger, logger logpkg.Logger) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(l)); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("metrics listening", logpkg.Str("addr", ln.Addr().String()))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
