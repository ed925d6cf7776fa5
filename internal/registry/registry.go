// Package registry maps concrete Alienware products to their zone layout
// and the transport they are controlled through. The table is static; it is
// the single source of device-specific knowledge in the driver core.
package registry

import (
	"errors"
	"fmt"
	"os"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
)

// ErrUnknownDevice is returned when no table entry matches the probed or
// requested product identity.
var ErrUnknownDevice = errors.New("registry: no matching AlienFX device model")

// TransportKind selects the delivery mechanism a model requires.
type TransportKind string

const (
	TransportUSB  TransportKind = "usb"
	TransportACPI TransportKind = "acpi"
)

// SysfsEncoding is how a packet is serialized into a sysfs attribute write.
// The alienware-wmi attribute format is model-specific, so it lives here
// rather than in the transport.
type SysfsEncoding string

const (
	// EncodingRaw writes the packet bytes as-is.
	EncodingRaw SysfsEncoding = "raw"
	// EncodingHex writes the packet as lowercase hex text.
	EncodingHex SysfsEncoding = "hex"
)

// Zone is one addressable lighting region. Code is the wire-level zone
// selector (a bitmask on USB controllers, an LED index on ACPI ones).
type Zone struct {
	Name string
	Code uint32
}

// PowerState maps a named power state to its controller code. Order matters:
// theme application walks states in declaration order.
type PowerState struct {
	Name string
	Code uint8
}

// Reset codes shared by all known controllers.
const (
	ResetAllLightsOff = "all-lights-off"
	ResetAllLightsOn  = "all-lights-on"
)

// DeviceModel is the static descriptor for one product. Read-only after
// construction; owned by this package for the process lifetime.
type DeviceModel struct {
	Name      string
	Transport TransportKind
	Revision  fxpacket.Revision

	// USB identity. Zero for ACPI-only models.
	VendorID  uint16
	ProductID uint16

	// ACPI/WMI identity: the platform driver name and the sysfs layout it
	// exposes. CommandAttr is relative to SysfsRoot. An empty StatusAttr
	// means the model has no read-back path.
	SysfsDriver string
	SysfsRoot   string
	CommandAttr string
	StatusAttr  string
	Encoding    SysfsEncoding

	// Zones in declaration order; ApplyAll and theme application follow
	// this order because the firmware expects multi-zone frames in sequence.
	Zones []Zone

	ResetCodes   map[string]uint8
	PowerStates  []PowerState
	DefaultSpeed uint16
}

// ZoneCodes returns the name-to-code map for codec construction.
func (m *DeviceModel) ZoneCodes() map[string]uint32 {
	codes := make(map[string]uint32, len(m.Zones))
	for _, z := range m.Zones {
		codes[z.Name] = z.Code
	}
	return codes
}

// HasZone reports whether the model declares the named zone.
func (m *DeviceModel) HasZone(name string) bool {
	for _, z := range m.Zones {
		if z.Name == name {
			return true
		}
	}
	return false
}

// ZoneNames returns zone names in declaration order.
func (m *DeviceModel) ZoneNames() []string {
	names := make([]string, len(m.Zones))
	for i, z := range m.Zones {
		names[i] = z.Name
	}
	return names
}

// Readback reports whether the model's transport exposes a status read path.
func (m *DeviceModel) Readback() bool {
	if m.Transport == TransportUSB {
		return true
	}
	return m.StatusAttr != ""
}

// Zone names shared across models.
const (
	ZoneAlienHead     = "AlienHead"
	ZonePowerButton   = "PowerButton"
	ZoneSideLeft      = "SideLeft"
	ZoneLogo          = "Logo"
	ZoneTouchpad      = "Touchpad"
	ZoneMediaBar      = "MediaBar"
	ZoneStatusLEDs    = "StatusLEDs"
	ZoneLeftKeyboard  = "LeftKeyboard"
	ZoneMidLeftKbd    = "MiddleLeftKeyboard"
	ZoneMidRightKbd   = "MiddleRightKeyboard"
	ZoneRightKeyboard = "RightKeyboard"
)

const alienwareVendorID = 0x187c

var defaultResetCodes = map[string]uint8{
	ResetAllLightsOff: 3,
	ResetAllLightsOn:  4,
}

// models is the static device table. Extend here when adding support for a
// new product.
var models = []*DeviceModel{
	{
		Name:        "Alienware Alpha ASM100",
		Transport:   TransportACPI,
		Revision:    fxpacket.Rev2,
		VendorID:    alienwareVendorID,
		SysfsDriver: "alienware-wmi",
		SysfsRoot:   "/sys/devices/platform/alienware-wmi",
		CommandAttr: "rgb_zones/lighting_control_state",
		Encoding:    EncodingRaw,
		Zones: []Zone{
			{Name: ZoneAlienHead, Code: 0x00},
			{Name: ZonePowerButton, Code: 0x00},
			{Name: ZoneSideLeft, Code: 0x01},
		},
		ResetCodes: defaultResetCodes,
		PowerStates: []PowerState{
			{Name: "boot", Code: 1},
			{Name: "ac-sleep", Code: 2},
			{Name: "ac-charged", Code: 5},
			{Name: "ac-on", Code: 8},
		},
		DefaultSpeed: 200,
	},
	{
		Name:      "Alienware M14x R1",
		Transport: TransportUSB,
		Revision:  fxpacket.Rev1,
		VendorID:  alienwareVendorID,
		ProductID: 0x0521,
		Zones: []Zone{
			{Name: ZoneRightKeyboard, Code: 0x0001},
			{Name: ZoneMidRightKbd, Code: 0x0002},
			{Name: ZoneMidLeftKbd, Code: 0x0004},
			{Name: ZoneLeftKeyboard, Code: 0x0008},
			{Name: ZoneAlienHead, Code: 0x0020},
			{Name: ZoneLogo, Code: 0x0040},
			{Name: ZoneTouchpad, Code: 0x0080},
			{Name: ZoneMediaBar, Code: 0x0800},
			{Name: ZoneStatusLEDs, Code: 0x0200},
			{Name: ZonePowerButton, Code: 0x2000},
		},
		ResetCodes: defaultResetCodes,
		PowerStates: []PowerState{
			{Name: "boot", Code: 1},
			{Name: "ac-sleep", Code: 2},
			{Name: "ac-charged", Code: 5},
			{Name: "ac-charging", Code: 6},
			{Name: "battery-sleep", Code: 7},
			{Name: "battery-on", Code: 8},
			{Name: "battery-critical", Code: 9},
		},
		DefaultSpeed: 200,
	},
	{
		Name:      "Alienware 17 R4",
		Transport: TransportUSB,
		Revision:  fxpacket.Rev2,
		VendorID:  alienwareVendorID,
		ProductID: 0x0530,
		Zones: []Zone{
			{Name: ZoneLeftKeyboard, Code: 0x0008},
			{Name: ZoneMidLeftKbd, Code: 0x0004},
			{Name: ZoneMidRightKbd, Code: 0x0002},
			{Name: ZoneRightKeyboard, Code: 0x0001},
			{Name: ZoneAlienHead, Code: 0x0020},
			{Name: ZoneLogo, Code: 0x0040},
			{Name: ZoneTouchpad, Code: 0x0080},
			{Name: ZonePowerButton, Code: 0x2000},
		},
		ResetCodes: defaultResetCodes,
		PowerStates: []PowerState{
			{Name: "boot", Code: 1},
			{Name: "ac-sleep", Code: 2},
			{Name: "ac-charged", Code: 5},
			{Name: "ac-charging", Code: 6},
			{Name: "battery-sleep", Code: 7},
			{Name: "battery-on", Code: 8},
			{Name: "battery-critical", Code: 9},
		},
		DefaultSpeed: 200,
	},
}

// Models returns all known device models.
func Models() []*DeviceModel {
	out := make([]*DeviceModel, len(models))
	copy(out, models)
	return out
}

// LookupUSB finds the model for a VID/PID pair.
func LookupUSB(vendor, product uint16) (*DeviceModel, error) {
	for _, m := range models {
		if m.Transport == TransportUSB && m.VendorID == vendor && m.ProductID == product {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: usb %04x:%04x", ErrUnknownDevice, vendor, product)
}

// LookupSysfs finds the model for a recognized platform driver name.
func LookupSysfs(driver string) (*DeviceModel, error) {
	for _, m := range models {
		if m.Transport == TransportACPI && m.SysfsDriver == driver {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: sysfs driver %q", ErrUnknownDevice, driver)
}

// LookupName finds a model by its product name.
func LookupName(name string) (*DeviceModel, error) {
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
}

// USBID identifies one attached USB device during probing.
type USBID struct {
	Vendor  uint16
	Product uint16
}

// ProbeOptions injects the environment observations Probe needs, so tests
// and callers without libusb can substitute their own.
type ProbeOptions struct {
	// SysfsExists reports whether a sysfs root directory is present.
	// Defaults to an os.Stat check.
	SysfsExists func(root string) bool
	// ListUSB enumerates attached USB devices. Nil skips USB probing.
	ListUSB func() ([]USBID, error)
}

// Probe finds the first model whose device is present on this machine.
// ACPI models are checked first (sysfs root presence), then USB models
// against the attached device list. Fails with ErrUnknownDevice when
// nothing matches.
func Probe(opts ProbeOptions) (*DeviceModel, error) {
	exists := opts.SysfsExists
	if exists == nil {
		exists = func(root string) bool {
			_, err := os.Stat(root)
			return err == nil
		}
	}

	for _, m := range models {
		if m.Transport == TransportACPI && exists(m.SysfsRoot) {
			return m, nil
		}
	}

	if opts.ListUSB != nil {
		ids, err := opts.ListUSB()
		if err != nil {
			return nil, fmt.Errorf("registry: usb enumeration: %w", err)
		}
		for _, id := range ids {
			if m, err := LookupUSB(id.Vendor, id.Product); err == nil {
				return m, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no AlienFX ACPI/WMI or USB controller found", ErrUnknownDevice)
}
