// Package transport delivers command packets to an AlienFX controller over
// one of two mutually exclusive mechanisms: USB control transfers or the
// alienware-wmi sysfs interface. Both variants share one contract; the
// packet format never changes between them.
package transport

import (
	"errors"
	"fmt"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
)

// Kind names a transport variant for error context and metrics labels.
type Kind string

const (
	KindUSB   Kind = "usb"
	KindSysfs Kind = "sysfs"
)

// Sentinel errors shared by both variants.
var (
	// ErrModuleNotLoaded means the sysfs root is absent: the alienware-wmi
	// kernel module is not loaded. Remediation is caller-driven (modprobe).
	ErrModuleNotLoaded = errors.New("transport: alienware-wmi sysfs interface not present (kernel module not loaded?)")

	// ErrPermissionDenied means the device node or sysfs attribute is not
	// writable by the current user. Remediation is caller-driven (udev rule).
	ErrPermissionDenied = errors.New("transport: no write access to device")

	// ErrUnsupported is the read-back result on transport/model combinations
	// with no status path. It is a normal outcome, not a failure.
	ErrUnsupported = errors.New("transport: status read-back not supported")

	// ErrNotOpen is returned for I/O on a transport that was never opened
	// or has been closed.
	ErrNotOpen = errors.New("transport: not open")
)

// OpError is an I/O failure during an otherwise valid operation. It carries
// the variant, operation, and target so callers can decide on recovery;
// the transport itself never retries.
type OpError struct {
	Kind Kind
	Op   string // "open", "write", "read", "close"
	Path string // sysfs path or usb VID:PID
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("transport(%s): %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Transport is the common contract of both variants. A transport is bound
// to exactly one device for its lifetime and is selected once per device
// model at controller construction.
type Transport interface {
	// Open acquires the physical channel. Must be called before Write/Read.
	Open() error
	// Write delivers one packet. The packet is consumed exactly once.
	Write(pkt fxpacket.Packet) error
	// Read fetches the raw status response where the device supports it,
	// or fails with ErrUnsupported where it does not.
	Read() ([]byte, error)
	// Close releases the channel. Safe to call on a never-opened transport.
	Close() error
	// Kind identifies the variant for error context.
	Kind() Kind
}

// New constructs the transport variant the model requires, unopened.
func New(model *registry.DeviceModel) (Transport, error) {
	switch model.Transport {
	case registry.TransportACPI:
		return NewSysfs(model), nil
	case registry.TransportUSB:
		return NewUSB(model), nil
	}
	return nil, fmt.Errorf("transport: model %q requires unknown transport %q", model.Name, model.Transport)
}
