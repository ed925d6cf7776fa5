package fxpacket

import (
	"errors"
	"testing"
)

var testZones = map[string]uint32{
	"AlienHead":   0x000001,
	"PowerButton": 0x000002,
	"Keyboard":    0x000400,
}

func TestEncodeZoneState_Rev2(t *testing.T) {
	codec := NewCodec(Rev2, testZones)

	tests := []struct {
		name  string
		zone  string
		state ZoneState
		want  []byte
	}{
		{
			name:  "static red",
			zone:  "AlienHead",
			state: ZoneState{Color: RGB{255, 0, 0}, Effect: EffectStatic, Enabled: true},
			want:  []byte{0x02, 0x03, 0x01, 0x00, 0x00, 0x01, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:  "pulse green",
			zone:  "PowerButton",
			state: ZoneState{Color: RGB{0, 255, 0}, Effect: EffectPulse, Enabled: true},
			want:  []byte{0x02, 0x02, 0x01, 0x00, 0x00, 0x02, 0x00, 0xff, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "morph blue to white",
			zone: "Keyboard",
			state: ZoneState{
				Color: RGB{0, 0, 255}, Color2: RGB{255, 255, 255},
				Effect: EffectMorph, Enabled: true,
			},
			want: []byte{0x02, 0x01, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff},
		},
		{
			name:  "disabled encodes black",
			zone:  "AlienHead",
			state: ZoneState{Color: RGB{255, 255, 255}, Effect: EffectStatic, Enabled: false},
			want:  []byte{0x02, 0x03, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, err := codec.EncodeZoneState(tt.zone, tt.state)
			if err != nil {
				t.Fatalf("EncodeZoneState() error: %v", err)
			}
			if len(pkt) != Rev2.PacketLength() {
				t.Fatalf("packet length = %d, want %d", len(pkt), Rev2.PacketLength())
			}
			for i, b := range tt.want {
				if pkt[i] != b {
					t.Errorf("byte %d = 0x%02x, want 0x%02x (packet %s)", i, pkt[i], b, pkt)
				}
			}
		})
	}
}

func TestEncodeZoneState_Rev1Packing(t *testing.T) {
	codec := NewCodec(Rev1, testZones)

	pkt, err := codec.EncodeZoneState("AlienHead", ZoneState{
		Color: RGB{0x0f, 0x00, 0x0a}, Effect: EffectStatic, Enabled: true,
	})
	if err != nil {
		t.Fatalf("EncodeZoneState() error: %v", err)
	}
	if len(pkt) != 9 {
		t.Fatalf("rev1 packet length = %d, want 9", len(pkt))
	}
	if pkt[6] != 0xf0 {
		t.Errorf("packed r/g byte = 0x%02x, want 0xf0", pkt[6])
	}
	if pkt[7] != 0xa0 {
		t.Errorf("packed b byte = 0x%02x, want 0xa0", pkt[7])
	}
}

func TestEncodeZoneState_Errors(t *testing.T) {
	codec := NewCodec(Rev1, testZones)

	_, err := codec.EncodeZoneState("Logo", ZoneState{Effect: EffectStatic, Enabled: true})
	if !errors.Is(err, ErrInvalidZone) {
		t.Errorf("unknown zone error = %v, want ErrInvalidZone", err)
	}

	_, err = codec.EncodeZoneState("AlienHead", ZoneState{
		Color: RGB{255, 0, 0}, Effect: EffectStatic, Enabled: true,
	})
	if !errors.Is(err, ErrInvalidColor) {
		t.Errorf("out-of-range rev1 color error = %v, want ErrInvalidColor", err)
	}
}

func TestControlCommands(t *testing.T) {
	codec := NewCodec(Rev1, testZones)

	if got := codec.GetStatus(); got[0] != 0x02 || got[1] != 0x06 {
		t.Errorf("GetStatus() = %s", got)
	}
	if got := codec.Reset(4); got[1] != 0x07 || got[2] != 4 {
		t.Errorf("Reset() = %s", got)
	}
	if got := codec.SaveNext(8); got[1] != 0x08 || got[2] != 8 {
		t.Errorf("SaveNext() = %s", got)
	}
	if got := codec.SetSpeed(0x00c8); got[1] != 0x0d || got[3] != 0x00 || got[4] != 0xc8 {
		t.Errorf("SetSpeed() = %s", got)
	}
	if got := codec.TransmitExecute(); got[1] != 0x05 {
		t.Errorf("TransmitExecute() = %s", got)
	}
}

func TestNoZoneCode(t *testing.T) {
	codec := NewCodec(Rev2, testZones)

	// Complement of 0x000001|0x000002|0x000400 within the 24-bit zone field.
	if got := codec.NoZoneCode(); got != 0xfffbfc {
		t.Errorf("NoZoneCode() = %#06x, want 0xfffbfc", got)
	}
	if empty := NewCodec(Rev2, nil); empty.NoZoneCode() != 0xffffff {
		t.Errorf("NoZoneCode() with no zones = %#06x, want 0xffffff", empty.NoZoneCode())
	}
}

func TestDecodeStatus(t *testing.T) {
	codec := NewCodec(Rev1, testZones)

	ready := make([]byte, 9)
	ready[0] = StatusReady
	st, err := codec.DecodeStatus(ready)
	if err != nil {
		t.Fatalf("DecodeStatus(ready) error: %v", err)
	}
	if !st.Ready {
		t.Error("DecodeStatus(ready).Ready = false")
	}

	busy := make([]byte, 9)
	busy[0] = StatusBusy
	st, err = codec.DecodeStatus(busy)
	if err != nil {
		t.Fatalf("DecodeStatus(busy) error: %v", err)
	}
	if st.Ready {
		t.Error("DecodeStatus(busy).Ready = true")
	}

	var decodeErr *DecodeError
	if _, err = codec.DecodeStatus([]byte{0x10}); !errors.As(err, &decodeErr) {
		t.Errorf("short buffer error = %v, want *DecodeError", err)
	}
	bad := make([]byte, 9)
	bad[0] = 0x99
	if _, err = codec.DecodeStatus(bad); !errors.As(err, &decodeErr) {
		t.Errorf("bad status byte error = %v, want *DecodeError", err)
	}
}

func TestParseEffect(t *testing.T) {
	for _, valid := range []string{"static", "pulse", "morph", "off"} {
		if _, err := ParseEffect(valid); err != nil {
			t.Errorf("ParseEffect(%q) error: %v", valid, err)
		}
	}
	if _, err := ParseEffect("rainbow"); err == nil {
		t.Error("ParseEffect(\"rainbow\") should return error")
	}
}
