package workers

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/shirou/gopsutil/process"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type FeedLoad struct {
	Name     string
	Length   int
	Capacity int
}

// Saturated reports whether the buffer is filled to at least threshold (0..1).
func (f FeedLoad) Saturated(threshold float64) bool {
	return f.Capacity > 0 && float64(f.Length)/float64(f.Capacity) >= threshold
}

type Sample struct {
	Feeds         []FeedLoad
	Subscriptions int
	CPU           float64
	RAM           float32
}

// BackendMonitor periodically samples the fill level of the local backend's
// buffers, its live subscriptions and the process usage. Reading len and cap
// of a channel never blocks, so sampling does not interfere with delivery.
type BackendMonitor struct {
	log           *slog.Logger
	channels      []NamedChannel
	subscriptions func() int
	interval      time.Duration
	threshold     float64
	proc          *process.Process
}

func NewBackendMonitor(log *slog.Logger, channels []NamedChannel, subscriptions func() int,
	interval time.Duration, threshold float64) *BackendMonitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Process usage unavailable", "error", err)
	}
	return &BackendMonitor{
		log:           log,
		channels:      channels,
		subscriptions: subscriptions,
		interval:      interval,
		threshold:     threshold,
		proc:          proc,
	}
}

func (w *BackendMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping backend monitor")
			return nil
		case <-ticker.C:
			w.report(w.Sample())
		}
	}
}

func (w *BackendMonitor) Sample() Sample {
	sample := Sample{Feeds: make([]FeedLoad, 0, len(w.channels))}
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		sample.Feeds = append(sample.Feeds, FeedLoad{Name: nc.Name, Length: v.Len(), Capacity: v.Cap()})
	}
	if w.subscriptions != nil {
		sample.Subscriptions = w.subscriptions()
	}
	if w.proc != nil {
		if cpu, err := w.proc.CPUPercent(); err == nil {
			sample.CPU = cpu
		}
		if ram, err := w.proc.MemoryPercent(); err == nil {
			sample.RAM = ram
		}
	}
	return sample
}

func (w *BackendMonitor) report(sample Sample) {
	for _, feed := range sample.Feeds {
		if feed.Saturated(w.threshold) {
			w.log.Warn("Buffer close to capacity", "name", feed.Name, "length", feed.Length, "capacity", feed.Capacity)
		}
	}
	w.log.Debug("Backend usage", "subscriptions", sample.Subscriptions, "cpu", sample.CPU, "ram", sample.RAM)
}
