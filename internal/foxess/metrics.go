package foxess

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	defaultMinFetchInterval = time.Minute
	collectTimeout          = 45 * time.Second
)

type realtimeSnapshot struct {
	device    Device
	points    Realtime
	fetchedAt time.Time
	success   bool
	err       error
}

// MetricsCollector exposes the account's realtime telemetry as
// prometheus gauges. Scrapes inside the minimum fetch interval serve
// the cached snapshot so the vendor rate limit is respected no matter
// how aggressive the scraper is.
type MetricsCollector struct {
	session          *Session
	minFetchInterval time.Duration
	log              zerolog.Logger

	realtime    *prometheus.GaugeVec
	deviceInfo  *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge

	mu     sync.Mutex
	cached *realtimeSnapshot
	device *Device
}

// NewMetricsCollector wires a collector around an authenticated
// session.
func NewMetricsCollector(session *Session, log zerolog.Logger) *MetricsCollector {
	return &MetricsCollector{
		session:          session,
		minFetchInterval: defaultMinFetchInterval,
		log:              log,
		realtime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "foxess_realtime_value",
			Help: "Latest realtime reading per variable",
		}, []string{"device_sn", "variable", "unit"}),
		deviceInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "foxess_device_info",
			Help: "Device information (always 1)",
		}, []string{"device_sn", "station_name", "device_type", "has_pv", "has_battery"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foxess_last_success_timestamp_seconds",
			Help: "Last successful FoxESS fetch timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foxess_scrape_success",
			Help: "Last fetch success (1=ok, 0=error)",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.realtime.Describe(ch)
	c.deviceInfo.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	c.applySnapshot(c.currentSnapshot(ctx))
	c.collectAll(ch)
}

// Snapshot returns the latest telemetry for consumers outside the
// scrape path, such as the exporter's MQTT loop. It shares the
// collector's cache, so the vendor sees at most one round trip per
// minimum fetch interval no matter how many consumers ask.
func (c *MetricsCollector) Snapshot(ctx context.Context) (Device, Realtime, error) {
	snapshot := c.currentSnapshot(ctx)
	if snapshot.err != nil {
		return snapshot.device, nil, snapshot.err
	}
	return snapshot.device, snapshot.points, nil
}

// currentSnapshot serves the cached snapshot inside the minimum fetch
// interval and goes to the vendor otherwise.
func (c *MetricsCollector) currentSnapshot(ctx context.Context) realtimeSnapshot {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.cached.fetchedAt) < c.minFetchInterval {
		snapshot := *c.cached
		c.mu.Unlock()
		return snapshot
	}
	c.mu.Unlock()

	snapshot := c.fetch(ctx)
	c.mu.Lock()
	c.cached = &snapshot
	c.mu.Unlock()
	return snapshot
}

func (c *MetricsCollector) fetchOnce(ctx context.Context) (Device, Realtime, error) {
	device, err := c.resolveDevice(ctx)
	if err != nil {
		return Device{}, nil, err
	}
	points, err := c.session.FetchRealtime(ctx, device.SerialNumber)
	if err != nil {
		return device, nil, err
	}
	return device, points, nil
}

func (c *MetricsCollector) fetch(ctx context.Context) realtimeSnapshot {
	device, points, err := c.fetchOnce(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("foxess fetch failed")
		return realtimeSnapshot{device: device, fetchedAt: time.Now(), err: err}
	}
	return realtimeSnapshot{
		device:    device,
		points:    points,
		fetchedAt: time.Now(),
		success:   true,
	}
}

// resolveDevice picks the account's first device and keeps it; the
// serial is stable for the life of the process.
func (c *MetricsCollector) resolveDevice(ctx context.Context) (Device, error) {
	c.mu.Lock()
	if c.device != nil {
		device := *c.device
		c.mu.Unlock()
		return device, nil
	}
	c.mu.Unlock()

	devices, err := c.session.ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	if len(devices) == 0 {
		return Device{}, ErrNoDevices
	}

	c.mu.Lock()
	c.device = &devices[0]
	c.mu.Unlock()
	return devices[0], nil
}

func (c *MetricsCollector) applySnapshot(snapshot realtimeSnapshot) {
	c.realtime.Reset()
	c.deviceInfo.Reset()

	if snapshot.device.SerialNumber != "" {
		c.deviceInfo.With(prometheus.Labels{
			"device_sn":    snapshot.device.SerialNumber,
			"station_name": snapshot.device.StationName,
			"device_type":  snapshot.device.DeviceType,
			"has_pv":       strconv.FormatBool(snapshot.device.HasPV),
			"has_battery":  strconv.FormatBool(snapshot.device.HasBattery),
		}).Set(1)
	}

	for _, point := range snapshot.points {
		value, ok := point.Value.Float()
		if !ok {
			continue
		}
		c.realtime.With(prometheus.Labels{
			"device_sn": snapshot.device.SerialNumber,
			"variable":  point.Variable,
			"unit":      snapshot.points.Unit(point.Variable),
		}).Set(value)
	}

	if snapshot.success {
		c.success.Set(1)
		c.lastSuccess.Set(float64(snapshot.fetchedAt.Unix()))
	} else {
		c.success.Set(0)
	}
}

func (c *MetricsCollector) collectAll(ch chan<- prometheus.Metric) {
	c.realtime.Collect(ch)
	c.deviceInfo.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}
