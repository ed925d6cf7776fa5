package registry

import (
	"errors"
	"testing"
)

func TestLookupUSB(t *testing.T) {
	m, err := LookupUSB(0x187c, 0x0521)
	if err != nil {
		t.Fatalf("LookupUSB() error: %v", err)
	}
	if m.Name != "Alienware M14x R1" {
		t.Errorf("LookupUSB() model = %q", m.Name)
	}
	if m.Transport != TransportUSB {
		t.Errorf("LookupUSB() transport = %q, want usb", m.Transport)
	}

	if _, err := LookupUSB(0x1234, 0x5678); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("unknown VID/PID error = %v, want ErrUnknownDevice", err)
	}
}

func TestLookupSysfs(t *testing.T) {
	m, err := LookupSysfs("alienware-wmi")
	if err != nil {
		t.Fatalf("LookupSysfs() error: %v", err)
	}
	if m.Transport != TransportACPI {
		t.Errorf("LookupSysfs() transport = %q, want acpi", m.Transport)
	}
	if m.Readback() {
		t.Error("ASM100 should not report a read-back path")
	}

	if _, err := LookupSysfs("nonexistent-wmi"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("unknown driver error = %v, want ErrUnknownDevice", err)
	}
}

func TestModelZoneHelpers(t *testing.T) {
	m, err := LookupName("Alienware Alpha ASM100")
	if err != nil {
		t.Fatalf("LookupName() error: %v", err)
	}

	if !m.HasZone(ZoneAlienHead) {
		t.Error("HasZone(AlienHead) = false")
	}
	if m.HasZone("Keyboard") {
		t.Error("HasZone(Keyboard) = true for ASM100")
	}

	names := m.ZoneNames()
	want := []string{ZoneAlienHead, ZonePowerButton, ZoneSideLeft}
	if len(names) != len(want) {
		t.Fatalf("ZoneNames() len = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ZoneNames()[%d] = %q, want %q (declaration order must hold)", i, names[i], want[i])
		}
	}

	codes := m.ZoneCodes()
	if codes[ZoneSideLeft] != 0x01 {
		t.Errorf("ZoneCodes()[SideLeft] = %#x, want 0x01", codes[ZoneSideLeft])
	}
}

func TestProbe(t *testing.T) {
	t.Run("acpi model wins when sysfs root exists", func(t *testing.T) {
		m, err := Probe(ProbeOptions{
			SysfsExists: func(root string) bool { return true },
		})
		if err != nil {
			t.Fatalf("Probe() error: %v", err)
		}
		if m.Transport != TransportACPI {
			t.Errorf("Probe() transport = %q, want acpi", m.Transport)
		}
	})

	t.Run("falls back to usb enumeration", func(t *testing.T) {
		m, err := Probe(ProbeOptions{
			SysfsExists: func(root string) bool { return false },
			ListUSB: func() ([]USBID, error) {
				return []USBID{{Vendor: 0x187c, Product: 0x0530}}, nil
			},
		})
		if err != nil {
			t.Fatalf("Probe() error: %v", err)
		}
		if m.Name != "Alienware 17 R4" {
			t.Errorf("Probe() model = %q", m.Name)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := Probe(ProbeOptions{
			SysfsExists: func(root string) bool { return false },
			ListUSB:     func() ([]USBID, error) { return nil, nil },
		})
		if !errors.Is(err, ErrUnknownDevice) {
			t.Errorf("Probe() error = %v, want ErrUnknownDevice", err)
		}
	})
}
