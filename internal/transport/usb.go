package transport

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/gousb"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
)

// HID control transfer parameters used by every known USB AlienFX
// controller.
const (
	usbSendRequestType = 0x21 // host-to-device, class, interface
	usbSendRequest     = 0x09 // SET_REPORT
	usbSendValue       = 0x0202
	usbReadRequestType = 0xa1 // device-to-host, class, interface
	usbReadRequest     = 0x01 // GET_REPORT
	usbReadValue       = 0x0101
)

// USB delivers packets to a VID/PID-identified controller via USB control
// transfers. The kernel HID driver is detached for the transport's lifetime.
type USB struct {
	vid, pid  gousb.ID
	packetLen int

	ctx *gousb.Context
	dev *gousb.Device
}

// NewUSB creates an unopened USB transport for the model's VID/PID.
func NewUSB(model *registry.DeviceModel) *USB {
	return &USB{
		vid:       gousb.ID(model.VendorID),
		pid:       gousb.ID(model.ProductID),
		packetLen: model.Revision.PacketLength(),
	}
}

// Kind identifies the variant.
func (u *USB) Kind() Kind {
	return KindUSB
}

func (u *USB) path() string {
	return fmt.Sprintf("%s:%s", u.vid, u.pid)
}

// Open claims the device. A present but unopenable device node surfaces
// libusb's permission error as ErrPermissionDenied.
func (u *USB) Open() error {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(u.vid, u.pid)
	if err != nil {
		ctx.Close()
		if errors.Is(err, gousb.ErrorAccess) || os.IsPermission(err) {
			return &OpError{Kind: KindUSB, Op: "open", Path: u.path(), Err: ErrPermissionDenied}
		}
		return &OpError{Kind: KindUSB, Op: "open", Path: u.path(), Err: err}
	}
	if dev == nil {
		ctx.Close()
		return &OpError{Kind: KindUSB, Op: "open", Path: u.path(), Err: fmt.Errorf("device not attached")}
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return &OpError{Kind: KindUSB, Op: "open", Path: u.path(), Err: err}
	}

	u.ctx = ctx
	u.dev = dev
	return nil
}

// Write issues one SET_REPORT control transfer carrying the packet.
func (u *USB) Write(pkt fxpacket.Packet) error {
	if u.dev == nil {
		return &OpError{Kind: KindUSB, Op: "write", Path: u.path(), Err: ErrNotOpen}
	}
	n, err := u.dev.Control(usbSendRequestType, usbSendRequest, usbSendValue, 0, pkt)
	if err != nil {
		return &OpError{Kind: KindUSB, Op: "write", Path: u.path(), Err: err}
	}
	if n != len(pkt) {
		return &OpError{
			Kind: KindUSB, Op: "write", Path: u.path(),
			Err: fmt.Errorf("short control transfer: %d of %d bytes", n, len(pkt)),
		}
	}
	return nil
}

// Read issues a GET_REPORT control transfer and returns the raw status
// packet.
func (u *USB) Read() ([]byte, error) {
	if u.dev == nil {
		return nil, &OpError{Kind: KindUSB, Op: "read", Path: u.path(), Err: ErrNotOpen}
	}
	buf := make([]byte, u.packetLen)
	n, err := u.dev.Control(usbReadRequestType, usbReadRequest, usbReadValue, 0, buf)
	if err != nil {
		return nil, &OpError{Kind: KindUSB, Op: "read", Path: u.path(), Err: err}
	}
	return buf[:n], nil
}

// Close releases the device and the libusb context.
func (u *USB) Close() error {
	var firstErr error
	if u.dev != nil {
		if err := u.dev.Close(); err != nil {
			firstErr = &OpError{Kind: KindUSB, Op: "close", Path: u.path(), Err: err}
		}
		u.dev = nil
	}
	if u.ctx != nil {
		if err := u.ctx.Close(); err != nil && firstErr == nil {
			firstErr = &OpError{Kind: KindUSB, Op: "close", Path: u.path(), Err: err}
		}
		u.ctx = nil
	}
	return firstErr
}

// EnumerateUSB lists attached USB devices for registry probing. Devices are
// only inspected, never opened.
func EnumerateUSB() ([]registry.USBID, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var ids []registry.USBID
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		ids = append(ids, registry.USBID{
			Vendor:  uint16(desc.Vendor),
			Product: uint16(desc.Product),
		})
		return false // collect descriptors only
	})
	if err != nil {
		return nil, fmt.Errorf("transport: usb enumeration: %w", err)
	}
	return ids, nil
}
