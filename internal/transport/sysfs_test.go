package transport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
)

func asm100(t *testing.T) *registry.DeviceModel {
	t.Helper()
	m, err := registry.LookupSysfs("alienware-wmi")
	if err != nil {
		t.Fatalf("LookupSysfs() error: %v", err)
	}
	return m
}

// fakeSysfsRoot builds a writable alienware-wmi attribute tree in a temp dir.
func fakeSysfsRoot(t *testing.T, model *registry.DeviceModel) string {
	t.Helper()
	root := t.TempDir()
	attr := filepath.Join(root, model.CommandAttr)
	if err := os.MkdirAll(filepath.Dir(attr), 0o755); err != nil {
		t.Fatalf("mkdir attr dir: %v", err)
	}
	if err := os.WriteFile(attr, nil, 0o644); err != nil {
		t.Fatalf("create attr file: %v", err)
	}
	return root
}

func TestSysfsOpen_ModuleNotLoaded(t *testing.T) {
	model := asm100(t)
	tr := NewSysfsAt(model, filepath.Join(t.TempDir(), "does-not-exist"))

	err := tr.Open()
	if !errors.Is(err, ErrModuleNotLoaded) {
		t.Fatalf("Open() error = %v, want ErrModuleNotLoaded", err)
	}

	// No write may be attempted against a missing root.
	pkt := fxpacket.Packet{0x02, 0x03}
	if err := tr.Write(pkt); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write() after failed open = %v, want ErrNotOpen", err)
	}
}

func TestSysfsOpen_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	model := asm100(t)
	root := fakeSysfsRoot(t, model)
	if err := os.Chmod(filepath.Join(root, model.CommandAttr), 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	tr := NewSysfsAt(model, root)
	if err := tr.Open(); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Open() error = %v, want ErrPermissionDenied", err)
	}
}

func TestSysfsWriteReadClose(t *testing.T) {
	model := asm100(t)
	root := fakeSysfsRoot(t, model)
	tr := NewSysfsAt(model, root)

	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	codec := fxpacket.NewCodec(model.Revision, model.ZoneCodes())
	pkt, err := codec.SetColor(1, 0x00, fxpacket.RGB{R: 255})
	if err != nil {
		t.Fatalf("SetColor() error: %v", err)
	}
	if err := tr.Write(pkt); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(root, model.CommandAttr))
	if err != nil {
		t.Fatalf("read back attr: %v", err)
	}
	if string(written) != string(pkt) {
		t.Errorf("attribute contents = % 02x, want % 02x", written, []byte(pkt))
	}

	// ASM100 declares no status attribute.
	if _, err := tr.Read(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Read() error = %v, want ErrUnsupported", err)
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := tr.Write(pkt); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write() after Close() = %v, want ErrNotOpen", err)
	}
}

func TestSysfsHexEncoding(t *testing.T) {
	model := asm100(t)
	hexModel := *model
	hexModel.Encoding = registry.EncodingHex
	root := fakeSysfsRoot(t, &hexModel)

	tr := NewSysfsAt(&hexModel, root)
	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if err := tr.Write(fxpacket.Packet{0x02, 0x03, 0xff}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	written, err := os.ReadFile(filepath.Join(root, hexModel.CommandAttr))
	if err != nil {
		t.Fatalf("read back attr: %v", err)
	}
	if string(written) != "0203ff" {
		t.Errorf("hex attribute contents = %q, want %q", written, "0203ff")
	}
}

func TestSysfsReadback(t *testing.T) {
	model := asm100(t)
	rb := *model
	rb.StatusAttr = "rgb_zones/lighting_control_status"
	root := fakeSysfsRoot(t, &rb)

	status := make([]byte, rb.Revision.PacketLength())
	status[0] = fxpacket.StatusReady
	if err := os.WriteFile(filepath.Join(root, rb.StatusAttr), status, 0o644); err != nil {
		t.Fatalf("write status attr: %v", err)
	}

	tr := NewSysfsAt(&rb, root)
	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	raw, err := tr.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if raw[0] != fxpacket.StatusReady {
		t.Errorf("Read()[0] = 0x%02x, want 0x%02x", raw[0], fxpacket.StatusReady)
	}
}

func TestNew_SelectsVariant(t *testing.T) {
	acpi := asm100(t)
	tr, err := New(acpi)
	if err != nil {
		t.Fatalf("New(acpi) error: %v", err)
	}
	if tr.Kind() != KindSysfs {
		t.Errorf("New(acpi).Kind() = %q, want sysfs", tr.Kind())
	}

	usbModel, err := registry.LookupUSB(0x187c, 0x0521)
	if err != nil {
		t.Fatalf("LookupUSB() error: %v", err)
	}
	tr, err = New(usbModel)
	if err != nil {
		t.Fatalf("New(usb) error: %v", err)
	}
	if tr.Kind() != KindUSB {
		t.Errorf("New(usb).Kind() = %q, want usb", tr.Kind())
	}
}
