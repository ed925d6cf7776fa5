// Package fxpacket encodes and decodes the fixed-format AlienFX command
// packets shared by the USB and ACPI/WMI transports. Only the delivery
// mechanism differs between transports; the packet layout is identical.
package fxpacket

import (
	"errors"
	"fmt"
)

// Revision selects the command packet layout of a controller generation.
type Revision int

const (
	// Rev1 is used by older controllers: 9-byte packets, 4-bit color channels.
	Rev1 Revision = 1
	// Rev2 is used by newer controllers (17 R4 and later): 12-byte packets,
	// 8-bit color channels.
	Rev2 Revision = 2
)

// PacketLength returns the fixed packet size for the revision.
func (r Revision) PacketLength() int {
	if r == Rev2 {
		return 12
	}
	return 9
}

// Command opcodes. Byte 0 of every packet is the start marker, byte 1 the
// opcode.
const (
	startByte byte = 0x02

	cmdSetMorphColor byte = 0x01
	cmdSetBlinkColor byte = 0x02
	cmdSetColor      byte = 0x03
	cmdEndLoopBlock  byte = 0x04
	cmdTransmitExec  byte = 0x05
	cmdGetStatus     byte = 0x06
	cmdReset         byte = 0x07
	cmdSaveNext      byte = 0x08
	cmdSave          byte = 0x09
	cmdSetSpeed      byte = 0x0d
)

// Status byte values returned by controllers that support read-back.
const (
	StatusReady byte = 0x10
	StatusBusy  byte = 0x11
)

// Effect identifies a zone lighting mode.
type Effect string

const (
	EffectStatic Effect = "static"
	EffectPulse  Effect = "pulse"
	EffectMorph  Effect = "morph"
	EffectOff    Effect = "off"
)

// ParseEffect validates an effect name.
func ParseEffect(s string) (Effect, error) {
	switch Effect(s) {
	case EffectStatic, EffectPulse, EffectMorph, EffectOff:
		return Effect(s), nil
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// RGB is a color triple. Rev1 controllers only use the upper nibble of each
// channel; values above 0x0f are rejected for that revision.
type RGB struct {
	R, G, B uint8
}

// Black is the all-off color.
var Black = RGB{}

// ZoneState is the desired state of one lighting zone, the unit accepted by
// the codec's high-level encoder.
type ZoneState struct {
	Color   RGB
	Color2  RGB // secondary color, used by the morph effect
	Effect  Effect
	Enabled bool
}

// Packet is one wire-level command. Built by the codec, consumed exactly
// once by a transport. Treat as immutable once built.
type Packet []byte

// String renders the packet as hex for debug logging.
func (p Packet) String() string {
	return fmt.Sprintf("% 02x", []byte(p))
}

// Sentinel errors for malformed encode requests.
var (
	ErrInvalidZone  = errors.New("fxpacket: zone not defined for this device model")
	ErrInvalidColor = errors.New("fxpacket: color channel out of range")
)

// DecodeError reports a status response that could not be parsed.
type DecodeError struct {
	Reason string
	Raw    []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fxpacket: decode: %s (raw % 02x)", e.Reason, e.Raw)
}

// Status is the decoded controller status response.
type Status struct {
	Ready bool
	Raw   byte
}

// Codec builds packets for one device model: its packet revision plus the
// zone codes it declares. Codec is stateless and safe for concurrent use.
type Codec struct {
	rev   Revision
	zones map[string]uint32
}

// NewCodec creates a codec for the given revision and zone-name-to-code map.
func NewCodec(rev Revision, zones map[string]uint32) *Codec {
	z := make(map[string]uint32, len(zones))
	for name, code := range zones {
		z[name] = code
	}
	return &Codec{rev: rev, zones: z}
}

// Revision returns the packet revision the codec encodes for.
func (c *Codec) Revision() Revision {
	return c.rev
}

// ZoneCode resolves a zone name to its wire code. Fails with ErrInvalidZone
// for zones the device model does not declare.
func (c *Codec) ZoneCode(zone string) (uint32, error) {
	code, ok := c.zones[zone]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidZone, zone)
	}
	return code, nil
}

// NoZoneCode returns the selector covering every zone the device model does
// not declare: the complement of all declared codes within the 24-bit zone
// field. Writing black to it turns off lighting regions outside the model's
// zone map.
func (c *Codec) NoZoneCode() uint32 {
	var all uint32
	for _, code := range c.zones {
		all |= code
	}
	return ^all & 0xffffff
}

// EncodeZoneState translates one zone-level request into a single packet.
// A disabled zone or the "off" effect encodes as a static black color; the
// morph effect uses the state's secondary color as the target.
func (c *Codec) EncodeZoneState(zone string, st ZoneState) (Packet, error) {
	code, err := c.ZoneCode(zone)
	if err != nil {
		return nil, err
	}
	if !st.Enabled || st.Effect == EffectOff {
		return c.SetColor(1, code, Black)
	}
	switch st.Effect {
	case EffectPulse:
		return c.SetBlinkColor(1, code, st.Color)
	case EffectMorph:
		return c.SetMorphColor(1, code, st.Color, st.Color2)
	default:
		return c.SetColor(1, code, st.Color)
	}
}

// SetColor builds a fixed-color command for the zones selected by code.
func (c *Codec) SetColor(block uint8, code uint32, color RGB) (Packet, error) {
	pkt, err := c.colorPacket(cmdSetColor, block, code, color, Black, false)
	if err != nil {
		return nil, err
	}
	return pkt, nil
}

// SetBlinkColor builds a blinking-color command.
func (c *Codec) SetBlinkColor(block uint8, code uint32, color RGB) (Packet, error) {
	return c.colorPacket(cmdSetBlinkColor, block, code, color, Black, false)
}

// SetMorphColor builds a command morphing from one color to another.
func (c *Codec) SetMorphColor(block uint8, code uint32, from, to RGB) (Packet, error) {
	return c.colorPacket(cmdSetMorphColor, block, code, from, to, true)
}

// GetStatus builds the status poll command.
func (c *Codec) GetStatus() Packet {
	pkt := c.blank()
	pkt[1] = cmdGetStatus
	return pkt
}

// Reset builds a reset command with the model-specific reset code.
func (c *Codec) Reset(code uint8) Packet {
	pkt := c.blank()
	pkt[1] = cmdReset
	pkt[2] = code
	return pkt
}

// SaveNext marks the following command to be stored for the given power
// state instead of being applied immediately.
func (c *Codec) SaveNext(state uint8) Packet {
	pkt := c.blank()
	pkt[1] = cmdSaveNext
	pkt[2] = state
	return pkt
}

// Save commits the commands stored via SaveNext.
func (c *Codec) Save() Packet {
	pkt := c.blank()
	pkt[1] = cmdSave
	return pkt
}

// EndLoopBlock terminates a loop block of color commands.
func (c *Codec) EndLoopBlock() Packet {
	pkt := c.blank()
	pkt[1] = cmdEndLoopBlock
	return pkt
}

// SetSpeed sets the tempo of blink and morph effects.
func (c *Codec) SetSpeed(speed uint16) Packet {
	pkt := c.blank()
	pkt[1] = cmdSetSpeed
	pkt[3] = byte(speed >> 8)
	pkt[4] = byte(speed)
	return pkt
}

// TransmitExecute makes the controller apply everything sent so far.
func (c *Codec) TransmitExecute() Packet {
	pkt := c.blank()
	pkt[1] = cmdTransmitExec
	return pkt
}

// DecodeStatus parses a raw read-back buffer. The response reuses the packet
// frame: status in byte 0.
func (c *Codec) DecodeStatus(raw []byte) (Status, error) {
	if len(raw) != c.rev.PacketLength() {
		return Status{}, &DecodeError{
			Reason: fmt.Sprintf("length %d, want %d", len(raw), c.rev.PacketLength()),
			Raw:    raw,
		}
	}
	switch raw[0] {
	case StatusReady:
		return Status{Ready: true, Raw: raw[0]}, nil
	case StatusBusy, startByte:
		return Status{Ready: false, Raw: raw[0]}, nil
	}
	return Status{}, &DecodeError{
		Reason: fmt.Sprintf("unexpected status byte 0x%02x", raw[0]),
		Raw:    raw,
	}
}

func (c *Codec) blank() Packet {
	pkt := make(Packet, c.rev.PacketLength())
	pkt[0] = startByte
	return pkt
}

// colorPacket lays out zone code bytes 3..5 and the revision-specific color
// encoding from byte 6.
func (c *Codec) colorPacket(cmd, block uint8, code uint32, c1, c2 RGB, morph bool) (Packet, error) {
	if err := c.checkColor(c1); err != nil {
		return nil, err
	}
	if morph {
		if err := c.checkColor(c2); err != nil {
			return nil, err
		}
	}
	pkt := c.blank()
	pkt[1] = cmd
	pkt[2] = block
	pkt[3] = byte(code >> 16)
	pkt[4] = byte(code >> 8)
	pkt[5] = byte(code)

	if c.rev == Rev2 {
		pkt[6], pkt[7], pkt[8] = c1.R, c1.G, c1.B
		if morph {
			pkt[9], pkt[10], pkt[11] = c2.R, c2.G, c2.B
		}
		return pkt, nil
	}
	// Rev1 packs two 4-bit channels per byte.
	pkt[6] = c1.R<<4 | c1.G
	if morph {
		pkt[7] = c1.B<<4 | c2.R
		pkt[8] = c2.G<<4 | c2.B
	} else {
		pkt[7] = c1.B << 4
	}
	return pkt, nil
}

func (c *Codec) checkColor(col RGB) error {
	if c.rev != Rev1 {
		return nil
	}
	if col.R > 0x0f || col.G > 0x0f || col.B > 0x0f {
		return fmt.Errorf("%w: rev1 channels are 4-bit, got (%d,%d,%d)",
			ErrInvalidColor, col.R, col.G, col.B)
	}
	return nil
}
