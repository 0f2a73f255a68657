package mock_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/voxbridge-app/voxbridge/pkg/devicelink"
	"github.com/voxbridge-app/voxbridge/pkg/devicelink/mock"
)

func newLink() *mock.Link {
	return mock.New(
		mock.WithLatency(0, 0, 0),
		mock.WithRand(rand.New(rand.NewSource(1))),
	)
}

func TestScanPopulatesCandidates(t *testing.T) {
	t.Parallel()

	l := newLink()
	defer l.Close()

	if got := l.Candidates(); len(got) != 0 {
		t.Fatalf("candidates before scan = %d, want 0", len(got))
	}
	if err := l.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got := l.Candidates()
	if len(got) < 1 || len(got) > 4 {
		t.Fatalf("candidates = %d, want between 1 and 4", len(got))
	}
	for _, d := range got {
		if d.ID == "" || d.Name == "" {
			t.Errorf("candidate %+v missing ID or Name", d)
		}
	}
}

func TestConnectKnownDevice(t *testing.T) {
	t.Parallel()

	l := newLink()
	defer l.Close()
	ctx := context.Background()

	if err := l.Scan(ctx); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	target := l.Candidates()[0]

	if err := l.Connect(ctx, target); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !l.IsReady() {
		t.Error("IsReady = false after Connect")
	}
	for _, d := range l.Candidates() {
		if d.ID == target.ID {
			t.Error("connected device still listed as candidate")
		}
	}
}

func TestConnectUnknownDevice(t *testing.T) {
	t.Parallel()

	l := newLink()
	defer l.Close()

	err := l.Connect(context.Background(), devicelink.Device{ID: "de:ad:be:ef:00:00", Name: "Ghost"})
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if l.IsReady() {
		t.Error("IsReady = true after failed Connect")
	}
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	l := newLink()
	defer l.Close()
	ctx := context.Background()

	// Disconnect with nothing connected is a no-op.
	if err := l.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect (idle): %v", err)
	}

	if err := l.Connect(ctx, devicelink.Device{ID: "00:11:22:33:44:55", Name: "AirPods Pro"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := l.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if l.IsReady() {
		t.Error("IsReady = true after Disconnect")
	}
}

func TestEventsReportTransitions(t *testing.T) {
	t.Parallel()

	l := newLink()
	ctx := context.Background()

	if err := l.Scan(ctx); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	device := devicelink.Device{ID: "11:22:33:44:55:66", Name: "Sony WH-1000XM4"}
	if err := l.Connect(ctx, device); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := l.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []devicelink.Event
	for ev := range l.Events() {
		got = append(got, ev)
	}

	want := []devicelink.EventType{
		devicelink.EventScanStarted,
		devicelink.EventScanFinished,
		devicelink.EventConnected,
		devicelink.EventDisconnected,
	}
	if len(got) != len(want) {
		t.Fatalf("events = %d, want %d", len(got), len(want))
	}
	for i, ev := range got {
		if ev.Type != want[i] {
			t.Errorf("event %d type = %v, want %v", i, ev.Type, want[i])
		}
	}
	if got[2].Device.ID != device.ID {
		t.Errorf("connected event device = %q, want %q", got[2].Device.ID, device.ID)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	l := newLink()
	if err := l.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestScanRespectsContext(t *testing.T) {
	t.Parallel()

	l := mock.New(mock.WithRand(rand.New(rand.NewSource(1))))
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Scan(ctx); err == nil {
		t.Error("expected error from cancelled Scan")
	}
}
