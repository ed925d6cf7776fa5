package transport

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
)

// Sysfs delivers packets through the alienware-wmi platform driver: one
// file write per packet to a model-specific attribute under the sysfs root.
// Some models expose no readable status attribute; Read reports
// ErrUnsupported for those ("Limited Status" behavior).
type Sysfs struct {
	root        string
	commandAttr string
	statusAttr  string
	encoding    registry.SysfsEncoding
	packetLen   int
	opened      bool
}

// NewSysfs creates an unopened sysfs transport rooted at the model's
// default platform path.
func NewSysfs(model *registry.DeviceModel) *Sysfs {
	return NewSysfsAt(model, model.SysfsRoot)
}

// NewSysfsAt overrides the sysfs root. Used when the platform device sits
// at a non-default path and by tests against a fake sysfs tree.
func NewSysfsAt(model *registry.DeviceModel, root string) *Sysfs {
	return &Sysfs{
		root:        root,
		commandAttr: model.CommandAttr,
		statusAttr:  model.StatusAttr,
		encoding:    model.Encoding,
		packetLen:   model.Revision.PacketLength(),
	}
}

// Kind identifies the variant.
func (s *Sysfs) Kind() Kind {
	return KindSysfs
}

// Open probes for the interface. A missing root means the kernel module is
// not loaded; an unwritable command attribute means missing permissions.
// No write is attempted.
func (s *Sysfs) Open() error {
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			return &OpError{Kind: KindSysfs, Op: "open", Path: s.root, Err: ErrModuleNotLoaded}
		}
		return &OpError{Kind: KindSysfs, Op: "open", Path: s.root, Err: err}
	}

	cmd := s.commandPath()
	f, err := os.OpenFile(cmd, os.O_WRONLY, 0)
	switch {
	case err == nil:
		f.Close()
	case os.IsNotExist(err):
		// Root present but the attribute is missing: the loaded driver does
		// not expose lighting control.
		return &OpError{Kind: KindSysfs, Op: "open", Path: cmd, Err: ErrModuleNotLoaded}
	case os.IsPermission(err):
		return &OpError{Kind: KindSysfs, Op: "open", Path: cmd, Err: ErrPermissionDenied}
	default:
		return &OpError{Kind: KindSysfs, Op: "open", Path: cmd, Err: err}
	}

	s.opened = true
	return nil
}

// Write serializes the packet in the model's attribute encoding and writes
// it to the command attribute.
func (s *Sysfs) Write(pkt fxpacket.Packet) error {
	if !s.opened {
		return &OpError{Kind: KindSysfs, Op: "write", Path: s.root, Err: ErrNotOpen}
	}

	data := []byte(pkt)
	if s.encoding == registry.EncodingHex {
		data = []byte(hex.EncodeToString(pkt))
	}

	if err := os.WriteFile(s.commandPath(), data, 0o644); err != nil {
		if os.IsPermission(err) {
			return &OpError{Kind: KindSysfs, Op: "write", Path: s.commandPath(), Err: ErrPermissionDenied}
		}
		return &OpError{Kind: KindSysfs, Op: "write", Path: s.commandPath(), Err: err}
	}
	return nil
}

// Read fetches the raw status attribute, or ErrUnsupported when the model
// declares none.
func (s *Sysfs) Read() ([]byte, error) {
	if !s.opened {
		return nil, &OpError{Kind: KindSysfs, Op: "read", Path: s.root, Err: ErrNotOpen}
	}
	if s.statusAttr == "" {
		return nil, ErrUnsupported
	}

	path := filepath.Join(s.root, s.statusAttr)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpError{Kind: KindSysfs, Op: "read", Path: path, Err: err}
	}
	if s.encoding == registry.EncodingHex {
		decoded, err := hex.DecodeString(string(data))
		if err != nil {
			return nil, &OpError{Kind: KindSysfs, Op: "read", Path: path, Err: err}
		}
		data = decoded
	}
	if len(data) > s.packetLen {
		data = data[:s.packetLen]
	}
	return data, nil
}

// Close releases the transport. Sysfs holds no kernel resources between
// writes, so this only invalidates the handle.
func (s *Sysfs) Close() error {
	s.opened = false
	return nil
}

func (s *Sysfs) commandPath() string {
	return filepath.Join(s.root, s.commandAttr)
}
