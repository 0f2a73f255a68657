// Package devicelink defines the paired-audio-device abstraction used to
// route microphone input and synthesized playback.
//
// The conversation session never touches this package; audio routing gates
// whether the presentation layer enables the microphone control, nothing
// more. Keeping the link behind an interface lets the application run against
// the simulated implementation in pkg/devicelink/mock until a real radio
// backend exists.
package devicelink

import "context"

// Device is one discoverable audio device.
type Device struct {
	// ID is the device address (e.g., "00:11:22:33:44:55").
	ID string

	// Name is the advertised device name. May be empty for anonymous devices.
	Name string
}

// EventType enumerates connectivity change notifications.
type EventType int

const (
	// EventScanStarted: a discovery scan began.
	EventScanStarted EventType = iota

	// EventScanFinished: a discovery scan completed; Candidates is current.
	EventScanFinished

	// EventConnected: a device connection was established.
	EventConnected

	// EventDisconnected: the connected device went away.
	EventDisconnected
)

// Event is a connectivity change notification.
type Event struct {
	Type   EventType
	Device Device
}

// Link is the abstraction over a paired-audio-device backend.
//
// Implementations must be safe for concurrent use. The Events channel is
// closed when the link is closed.
type Link interface {
	// IsReady reports whether an audio device is connected and usable for
	// microphone capture and playback.
	IsReady() bool

	// Candidates returns the devices discovered by the most recent scan,
	// excluding the currently connected device.
	Candidates() []Device

	// Scan discovers nearby devices. It blocks until the scan completes or
	// ctx is cancelled, then updates Candidates.
	Scan(ctx context.Context) error

	// Connect establishes a connection to device. Returns an error if the
	// device is unknown or the connection fails.
	Connect(ctx context.Context, device Device) error

	// Disconnect tears down the current connection. A no-op when nothing is
	// connected.
	Disconnect(ctx context.Context) error

	// Events returns a read-only channel of connectivity change
	// notifications. The channel is closed by Close.
	Events() <-chan Event

	// Close releases all resources and closes the Events channel. Safe to
	// call multiple times.
	Close() error
}
