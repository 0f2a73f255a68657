// Package mock provides a simulated devicelink.Link.
//
// The simulation mirrors how a phone's Bluetooth picker behaves without any
// radio: scans take a fixed latency and surface a random subset of a fixed
// candidate table, connects and disconnects take shorter latencies, and every
// transition is published on the Events channel. Deterministic behaviour for
// tests is available through WithRand and WithLatency.
package mock

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/voxbridge-app/voxbridge/pkg/devicelink"
)

const (
	defaultScanLatency       = 2 * time.Second
	defaultConnectLatency    = 1 * time.Second
	defaultDisconnectLatency = 500 * time.Millisecond

	eventBuf = 16
)

// knownDevices is the fixed table the simulated scanner draws from.
var knownDevices = []devicelink.Device{
	{ID: "00:11:22:33:44:55", Name: "AirPods Pro"},
	{ID: "11:22:33:44:55:66", Name: "Sony WH-1000XM4"},
	{ID: "22:33:44:55:66:77", Name: "Bose QuietComfort"},
	{ID: "33:44:55:66:77:88", Name: "Beats Studio3"},
}

// Compile-time assertion that Link implements devicelink.Link.
var _ devicelink.Link = (*Link)(nil)

// Option is a functional option for configuring a Link.
type Option func(*Link)

// WithRand replaces the randomness source used to pick scan results.
func WithRand(r *rand.Rand) Option {
	return func(l *Link) { l.rng = r }
}

// WithLatency overrides the simulated scan, connect, and disconnect delays.
// Tests pass zeros to run instantly.
func WithLatency(scan, connect, disconnect time.Duration) Option {
	return func(l *Link) {
		l.scanLatency = scan
		l.connectLatency = connect
		l.disconnectLatency = disconnect
	}
}

// Link is a simulated devicelink.Link. All methods are safe for concurrent
// use.
type Link struct {
	scanLatency       time.Duration
	connectLatency    time.Duration
	disconnectLatency time.Duration

	mu         sync.Mutex
	rng        *rand.Rand
	candidates []devicelink.Device
	connected  *devicelink.Device
	events     chan devicelink.Event
	closed     bool
}

// New creates a simulated Link with production-like latencies.
func New(opts ...Option) *Link {
	l := &Link{
		scanLatency:       defaultScanLatency,
		connectLatency:    defaultConnectLatency,
		disconnectLatency: defaultDisconnectLatency,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		events:            make(chan devicelink.Event, eventBuf),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// IsReady implements devicelink.Link.
func (l *Link) IsReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected != nil
}

// Candidates implements devicelink.Link.
func (l *Link) Candidates() []devicelink.Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]devicelink.Device, len(l.candidates))
	copy(out, l.candidates)
	return out
}

// Scan implements devicelink.Link. It sleeps for the simulated scan latency,
// then exposes a shuffled random subset (at least one) of the known device
// table, excluding the connected device.
func (l *Link) Scan(ctx context.Context) error {
	l.publish(devicelink.Event{Type: devicelink.EventScanStarted})

	if err := sleep(ctx, l.scanLatency); err != nil {
		return err
	}

	l.mu.Lock()
	pool := make([]devicelink.Device, 0, len(knownDevices))
	for _, d := range knownDevices {
		if l.connected != nil && l.connected.ID == d.ID {
			continue
		}
		pool = append(pool, d)
	}
	l.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	n := 1
	if len(pool) > 1 {
		n += l.rng.Intn(len(pool))
	}
	l.candidates = pool[:n]
	l.mu.Unlock()

	l.publish(devicelink.Event{Type: devicelink.EventScanFinished})
	return nil
}

// Connect implements devicelink.Link. Connecting while already connected
// first disconnects the current device.
func (l *Link) Connect(ctx context.Context, device devicelink.Device) error {
	known := false
	for _, d := range knownDevices {
		if d.ID == device.ID {
			known = true
			break
		}
	}
	if !known {
		return errors.New("devicelink: unknown device " + device.ID)
	}

	if err := sleep(ctx, l.connectLatency); err != nil {
		return err
	}

	l.mu.Lock()
	l.connected = &device
	// The connected device is no longer a candidate.
	kept := l.candidates[:0]
	for _, d := range l.candidates {
		if d.ID != device.ID {
			kept = append(kept, d)
		}
	}
	l.candidates = kept
	l.mu.Unlock()

	l.publish(devicelink.Event{Type: devicelink.EventConnected, Device: device})
	return nil
}

// Disconnect implements devicelink.Link.
func (l *Link) Disconnect(ctx context.Context) error {
	l.mu.Lock()
	if l.connected == nil {
		l.mu.Unlock()
		return nil
	}
	device := *l.connected
	l.mu.Unlock()

	if err := sleep(ctx, l.disconnectLatency); err != nil {
		return err
	}

	l.mu.Lock()
	l.connected = nil
	l.mu.Unlock()

	l.publish(devicelink.Event{Type: devicelink.EventDisconnected, Device: device})
	return nil
}

// Events implements devicelink.Link.
func (l *Link) Events() <-chan devicelink.Event {
	return l.events
}

// Close implements devicelink.Link.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.events)
	return nil
}

// publish sends ev without blocking; events are dropped if no one is
// listening and the buffer is full.
func (l *Link) publish(ev devicelink.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.events <- ev:
	default:
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
