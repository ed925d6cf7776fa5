package controller

import (
	"errors"
	"testing"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/alienfx-go/alienfx/internal/transport"
)

// mockTransport records writes and serves canned reads.
type mockTransport struct {
	kind     transport.Kind
	writes   []fxpacket.Packet
	reads    [][]byte
	readFn   func() ([]byte, error)
	openErr  error
	writeErr error
	readErr  error
	opened   bool
	closed   bool
}

func (m *mockTransport) Open() error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	return nil
}

func (m *mockTransport) Write(pkt fxpacket.Packet) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, pkt)
	return nil
}

func (m *mockTransport) Read() ([]byte, error) {
	if m.readFn != nil {
		return m.readFn()
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.reads) == 0 {
		return nil, transport.ErrUnsupported
	}
	raw := m.reads[0]
	m.reads = m.reads[1:]
	return raw, nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

func (m *mockTransport) Kind() transport.Kind {
	if m.kind == "" {
		return transport.KindSysfs
	}
	return m.kind
}

func asm100(t *testing.T) *registry.DeviceModel {
	t.Helper()
	m, err := registry.LookupName("Alienware Alpha ASM100")
	if err != nil {
		t.Fatalf("LookupName() error: %v", err)
	}
	return m
}

func newTestController(t *testing.T, model *registry.DeviceModel) (*Controller, *mockTransport) {
	t.Helper()
	tr := &mockTransport{}
	c, err := New(model, tr)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, tr
}

// The documented ASM100 scenario: one packet, zone AlienHead, payload red.
func TestSetColor_ASM100Scenario(t *testing.T) {
	c, tr := newTestController(t, asm100(t))

	if err := c.SetColor(registry.ZoneAlienHead, fxpacket.RGB{R: 255}); err != nil {
		t.Fatalf("SetColor() error: %v", err)
	}

	if len(tr.writes) != 1 {
		t.Fatalf("writes = %d, want exactly 1", len(tr.writes))
	}
	pkt := tr.writes[0]
	// Zone code bytes 3..5 select AlienHead (LED 0), payload bytes carry red.
	if pkt[3] != 0 || pkt[4] != 0 || pkt[5] != 0x00 {
		t.Errorf("zone bytes = %02x %02x %02x, want AlienHead (0)", pkt[3], pkt[4], pkt[5])
	}
	if pkt[6] != 0xff || pkt[7] != 0x00 || pkt[8] != 0x00 {
		t.Errorf("payload = (%d,%d,%d), want (255,0,0)", pkt[6], pkt[7], pkt[8])
	}

	zones := c.Zones()
	if zones[0].Name != registry.ZoneAlienHead || !zones[0].Enabled {
		t.Errorf("zone snapshot = %+v, want lit AlienHead first", zones[0])
	}
}

func TestInvalidZone_NoWrite(t *testing.T) {
	c, tr := newTestController(t, asm100(t))

	for _, call := range []func() error{
		func() error { return c.SetColor("Keyboard", fxpacket.RGB{R: 1}) },
		func() error { return c.SetEffect("Keyboard", fxpacket.EffectPulse) },
		func() error { return c.SetPower("Keyboard", true) },
	} {
		if err := call(); !errors.Is(err, fxpacket.ErrInvalidZone) {
			t.Errorf("error = %v, want ErrInvalidZone", err)
		}
	}
	if len(tr.writes) != 0 {
		t.Errorf("writes = %d, want 0 (no partial side effects on invalid input)", len(tr.writes))
	}
}

func TestApplyAll_DeclarationOrder(t *testing.T) {
	model := asm100(t)
	c, tr := newTestController(t, model)

	// Input map order must not matter; packets follow model declaration
	// order: AlienHead, PowerButton, SideLeft.
	states := map[string]fxpacket.ZoneState{
		registry.ZoneSideLeft:    {Color: fxpacket.RGB{B: 255}, Effect: fxpacket.EffectStatic, Enabled: true},
		registry.ZoneAlienHead:   {Color: fxpacket.RGB{R: 255}, Effect: fxpacket.EffectStatic, Enabled: true},
		registry.ZonePowerButton: {Color: fxpacket.RGB{G: 255}, Effect: fxpacket.EffectStatic, Enabled: true},
	}
	if err := c.ApplyAll(states); err != nil {
		t.Fatalf("ApplyAll() error: %v", err)
	}

	if len(tr.writes) != 3 {
		t.Fatalf("writes = %d, want exactly 3", len(tr.writes))
	}
	wantReds := []byte{0xff, 0x00, 0x00} // payload R channel per declared zone
	wantBlues := []byte{0x00, 0x00, 0xff}
	for i := range tr.writes {
		if tr.writes[i][6] != wantReds[i] || tr.writes[i][8] != wantBlues[i] {
			t.Errorf("packet %d payload = (%d,%d,%d), not in declaration order",
				i, tr.writes[i][6], tr.writes[i][7], tr.writes[i][8])
		}
	}
}

func TestApplyAll_InvalidZoneAborts(t *testing.T) {
	c, tr := newTestController(t, asm100(t))

	err := c.ApplyAll(map[string]fxpacket.ZoneState{
		registry.ZoneAlienHead: {Color: fxpacket.RGB{R: 255}, Effect: fxpacket.EffectStatic, Enabled: true},
		"Keyboard":             {Color: fxpacket.RGB{G: 255}, Effect: fxpacket.EffectStatic, Enabled: true},
	})
	if !errors.Is(err, fxpacket.ErrInvalidZone) {
		t.Fatalf("ApplyAll() error = %v, want ErrInvalidZone", err)
	}
	if len(tr.writes) != 0 {
		t.Errorf("writes = %d, want 0 (validation precedes any write)", len(tr.writes))
	}
}

func TestStatus_UnsupportedPassesThrough(t *testing.T) {
	c, _ := newTestController(t, asm100(t))

	_, err := c.Status()
	if !errors.Is(err, transport.ErrUnsupported) {
		t.Errorf("Status() error = %v, want ErrUnsupported untouched", err)
	}
}

func TestStatus_Readback(t *testing.T) {
	model := asm100(t)
	tr := &mockTransport{}
	ready := make([]byte, model.Revision.PacketLength())
	ready[0] = fxpacket.StatusReady
	tr.reads = [][]byte{ready}

	c, err := New(model, tr)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	st, err := c.Status()
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if !st.Ready {
		t.Error("Status().Ready = false, want true")
	}
}

func TestWriteError_SurfacedWithContext(t *testing.T) {
	model := asm100(t)
	tr := &mockTransport{}
	c, err := New(model, tr)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ioErr := &transport.OpError{Kind: transport.KindSysfs, Op: "write", Path: "/sys/x", Err: errors.New("device gone")}
	tr.writeErr = ioErr

	err = c.SetColor(registry.ZoneAlienHead, fxpacket.RGB{R: 255})
	if err == nil {
		t.Fatal("SetColor() with failing transport should return error")
	}
	var got *transport.OpError
	if !errors.As(err, &got) {
		t.Errorf("error %v does not unwrap to *transport.OpError", err)
	}
}

func TestNew_ReleasesTransportOnOpenFailure(t *testing.T) {
	tr := &mockTransport{openErr: transport.ErrModuleNotLoaded}

	_, err := New(asm100(t), tr)
	if !errors.Is(err, transport.ErrModuleNotLoaded) {
		t.Fatalf("New() error = %v, want ErrModuleNotLoaded", err)
	}
	if !tr.closed {
		t.Error("transport not released after failed construction")
	}
}

func TestRev1ColorScaling(t *testing.T) {
	model, err := registry.LookupUSB(0x187c, 0x0521)
	if err != nil {
		t.Fatalf("LookupUSB() error: %v", err)
	}
	c, tr := newTestController(t, model)

	if err := c.SetColor(registry.ZoneAlienHead, fxpacket.RGB{R: 255, G: 128}); err != nil {
		t.Fatalf("SetColor() error: %v", err)
	}
	pkt := tr.writes[0]
	if len(pkt) != 9 {
		t.Fatalf("rev1 packet length = %d, want 9", len(pkt))
	}
	// 255>>4=15, 128>>4=8 packed as high/low nibble.
	if pkt[6] != 0xf8 {
		t.Errorf("packed color byte = 0x%02x, want 0xf8", pkt[6])
	}
}

func TestApplyTheme(t *testing.T) {
	model := asm100(t)
	c, tr := newTestController(t, model)

	th := &theme.Theme{
		Name:  "test",
		Speed: 150,
		States: map[string][]theme.StateItem{
			"boot": {
				{
					Zones: []string{registry.ZoneAlienHead},
					Loop:  []theme.Action{{Type: theme.ActionFixed, Colors: []string{"ff0000"}}},
				},
			},
			"ac-on": {
				{
					Zones: []string{registry.ZoneSideLeft},
					Loop:  []theme.Action{{Type: theme.ActionMorph, Colors: []string{"0000ff", "00ff00"}}},
				},
			},
		},
	}
	if err := c.ApplyTheme(th); err != nil {
		t.Fatalf("ApplyTheme() error: %v", err)
	}

	if len(tr.writes) == 0 {
		t.Fatal("ApplyTheme() wrote no packets")
	}
	// The sequence ends with TransmitExecute (opcode 0x05).
	last := tr.writes[len(tr.writes)-1]
	if last[1] != 0x05 {
		t.Errorf("final packet opcode = 0x%02x, want 0x05 (transmit/execute)", last[1])
	}
	// Save framing must be present for persisted states, with one Save
	// committing each non-empty state and none in the trailing replay.
	foundSaveNext := false
	saves := 0
	speedAt := -1
	for i, pkt := range tr.writes {
		switch pkt[1] {
		case 0x08:
			foundSaveNext = true
		case 0x09:
			saves++
			if speedAt >= 0 {
				t.Errorf("save packet at index %d after set-speed at %d", i, speedAt)
			}
		case 0x0d:
			speedAt = i
		}
	}
	if !foundSaveNext {
		t.Error("no save-next packets in theme sequence")
	}
	if saves != 2 {
		t.Errorf("save packets = %d, want one per populated power state (2)", saves)
	}
	// The boot replay closes by blanking all undeclared zones: a black
	// fixed-color packet addressed to the complement of the zone map,
	// then an end-of-loop, then the execute.
	if len(tr.writes) < 3 {
		t.Fatalf("writes = %d, too short for replay tail", len(tr.writes))
	}
	dark := tr.writes[len(tr.writes)-3]
	if dark[1] != 0x03 || dark[3] != 0xff || dark[4] != 0xff || dark[5] != 0xfe {
		t.Errorf("replay tail packet = %s, want black to no-zone code fffffe", dark)
	}
	if dark[6] != 0 || dark[7] != 0 || dark[8] != 0 {
		t.Errorf("replay tail color = (%d,%d,%d), want black", dark[6], dark[7], dark[8])
	}
	if end := tr.writes[len(tr.writes)-2]; end[1] != 0x04 {
		t.Errorf("packet before execute has opcode 0x%02x, want 0x04 (end loop block)", end[1])
	}

	// Boot state is reflected in the zone snapshot.
	for _, z := range c.Zones() {
		if z.Name == registry.ZoneAlienHead {
			if !z.Enabled || z.Color != (fxpacket.RGB{R: 255}) {
				t.Errorf("AlienHead snapshot = %+v, want lit red", z)
			}
		}
	}
}

// A controller that never reports ready still gets the theme: the status
// poll gives up with a warning instead of failing the whole application.
func TestApplyTheme_ProceedsWhenBusy(t *testing.T) {
	model := asm100(t)
	tr := &mockTransport{}
	tr.readFn = func() ([]byte, error) {
		busy := make([]byte, model.Revision.PacketLength())
		busy[0] = fxpacket.StatusBusy
		return busy, nil
	}
	c, err := New(model, tr)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	th := &theme.Theme{
		Name: "busy",
		States: map[string][]theme.StateItem{
			"boot": {
				{
					Zones: []string{registry.ZoneAlienHead},
					Loop:  []theme.Action{{Type: theme.ActionFixed, Colors: []string{"00ff00"}}},
				},
			},
		},
	}
	if err := c.ApplyTheme(th); err != nil {
		t.Fatalf("ApplyTheme() error = %v, want nil despite busy controller", err)
	}
	last := tr.writes[len(tr.writes)-1]
	if last[1] != 0x05 {
		t.Errorf("final packet opcode = 0x%02x, want 0x05 (transmit/execute)", last[1])
	}
}

func TestApplyTheme_UnknownZone(t *testing.T) {
	c, tr := newTestController(t, asm100(t))

	th := &theme.Theme{
		Name: "bad",
		States: map[string][]theme.StateItem{
			"boot": {
				{
					Zones: []string{"Keyboard"},
					Loop:  []theme.Action{{Type: theme.ActionFixed, Colors: []string{"ff0000"}}},
				},
			},
		},
	}
	writesBefore := len(tr.writes)
	err := c.ApplyTheme(th)
	if !errors.Is(err, fxpacket.ErrInvalidZone) {
		t.Fatalf("ApplyTheme() error = %v, want ErrInvalidZone", err)
	}
	// Preparation packets may have been sent; no zone color packets follow
	// the failure.
	for _, pkt := range tr.writes[writesBefore:] {
		if pkt[1] == 0x03 {
			t.Error("color packet written despite invalid zone")
		}
	}
}

func TestReset(t *testing.T) {
	c, tr := newTestController(t, asm100(t))

	if err := c.Reset(registry.ResetAllLightsOff); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if len(tr.writes) != 1 || tr.writes[0][1] != 0x07 || tr.writes[0][2] != 3 {
		t.Errorf("reset packet = %s", tr.writes[0])
	}

	if err := c.Reset("half-lights"); err == nil {
		t.Error("Reset() with unknown type should return error")
	}
}
