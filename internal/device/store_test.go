package device

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	if s.SyncMode != "locked" {
		t.Errorf("SyncMode = %q, want locked", s.SyncMode)
	}
	if !s.Inputs[0].Connected || s.Inputs[2].Connected {
		t.Error("only the first two inputs should be connected")
	}
	for i, send := range s.Sends {
		if send.Input != int32(i+1) {
			t.Errorf("send %d input = %d, want %d", i, send.Input, i+1)
		}
		for c, l := range send.LUT {
			if l != DefaultLUT() {
				t.Errorf("send %d channel %d LUT is not the default curve", i, c)
			}
		}
	}
	if s.AnalogFormat.ColorMatrix[1][1] != 1 || s.AnalogFormat.ColorMatrix[0][1] != 0 {
		t.Error("color matrix should default to identity")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "abc", "abc"},
		{"exact", "123456789012345", "123456789012345"},
		{"long", "1234567890123456789", "123456789012345"},
		{"multibyte boundary", "12345678901234é", "12345678901234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in); got != tt.want {
				t.Errorf("truncate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStore_Strings(t *testing.T) {
	s := NewStore(Defaults())

	s.SetSyncMode("free-running-with-a-long-name")
	if got := s.SyncMode(); got != "free-running-wi" {
		t.Errorf("SyncMode() = %q", got)
	}

	if err := s.SetInputText(1, InputChromaSubsampling, "4:2:2"); err != nil {
		t.Fatalf("SetInputText() error = %v", err)
	}
	got, err := s.InputText(1, InputChromaSubsampling)
	if err != nil || got != "4:2:2" {
		t.Errorf("InputText() = %q, %v", got, err)
	}

	if _, err := s.InputText(0, InputText(9)); !errors.Is(err, ErrUnknownField) {
		t.Errorf("InputText(unknown) error = %v, want ErrUnknownField", err)
	}
}

func TestStore_IndexChecks(t *testing.T) {
	s := NewStore(Defaults())

	tests := []struct {
		name string
		call func() error
	}{
		{"input high", func() error { _, err := s.InputConnected(NumInputs); return err }},
		{"input negative", func() error { return s.SetInputFramerate(-1, 1) }},
		{"send high", func() error { _, err := s.SendFloat(NumSends, Hue); return err }},
		{"matrix row", func() error { _, err := s.ColorMatrix(3, 0); return err }},
		{"matrix col", func() error { return s.SetColorMatrix(0, 3, 1) }},
		{"channel", func() error { _, err := s.SendLUT(0, Channel(4)); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("error = %v, want ErrIndexOutOfRange", err)
			}
		})
	}
}

func TestStore_SendInput(t *testing.T) {
	s := NewStore(Defaults())

	if err := s.SetSendInput(0, 3); err != nil {
		t.Fatalf("SetSendInput(3) error = %v", err)
	}
	if got, _ := s.SendInput(0); got != 3 {
		t.Errorf("SendInput() = %d, want 3", got)
	}
	for _, v := range []int32{0, 5, -1} {
		if err := s.SetSendInput(0, v); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SetSendInput(%d) error = %v, want ErrInvalidInput", v, err)
		}
	}
	if got, _ := s.SendInput(0); got != 3 {
		t.Errorf("rejected writes changed SendInput to %d", got)
	}
}

func TestStore_SendFloats(t *testing.T) {
	s := NewStore(Defaults())

	for i, f := range SendFields() {
		v := float32(i) + 0.25
		if err := s.SetSendFloat(2, f, v); err != nil {
			t.Fatalf("SetSendFloat(%s) error = %v", f, err)
		}
		got, err := s.SendFloat(2, f)
		if err != nil || got != v {
			t.Errorf("SendFloat(%s) = %v, %v, want %v", f, got, err, v)
		}
	}
	if got, _ := s.SendFloat(1, ScaleX); got != 1 {
		t.Errorf("other send changed: ScaleX = %v", got)
	}
}

func TestStore_LUT(t *testing.T) {
	s := NewStore(Defaults())

	vals := make([]float32, 2*LUTPoints)
	for i := range vals {
		vals[i] = float32(i) / 32
	}
	l, err := LUTFromFloats(vals)
	if err != nil {
		t.Fatalf("LUTFromFloats() error = %v", err)
	}
	if err := s.SetSendLUT(3, ChannelB, l); err != nil {
		t.Fatalf("SetSendLUT() error = %v", err)
	}
	got, _ := s.SendLUT(3, ChannelB)
	floats := got.Floats()
	for i := range vals {
		if floats[i] != vals[i] {
			t.Fatalf("Floats()[%d] = %v, want %v", i, floats[i], vals[i])
		}
	}
	if other, _ := s.SendLUT(3, ChannelG); other != DefaultLUT() {
		t.Error("SetSendLUT changed another channel")
	}

	if _, err := LUTFromFloats(vals[:30]); !errors.Is(err, ErrInvalidLUT) {
		t.Errorf("LUTFromFloats(30) error = %v, want ErrInvalidLUT", err)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(Defaults())
	snap := s.Snapshot()
	snap.Sends[0].LUT[0][0].X = 42

	got, _ := s.SendLUT(0, ChannelY)
	if got[0].X == 42 {
		t.Error("Snapshot shares storage with the store")
	}

	s.Reset(snap)
	got, _ = s.SendLUT(0, ChannelY)
	if got[0].X != 42 {
		t.Error("Reset did not replace the state")
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(Defaults())
	var wg sync.WaitGroup
	for i := 0; i < NumSends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_ = s.SetSendFloat(i, Hue, float32(n))
				_, _ = s.SendFloat(i, Hue)
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < NumSends; i++ {
		if got, _ := s.SendFloat(i, Hue); got != 99 {
			t.Errorf("send %d hue = %v, want 99", i, got)
		}
	}
}

func TestChannelAndFieldNames(t *testing.T) {
	if ChannelR.String() != "R" || Channel(7).String() != "Channel(7)" {
		t.Error("Channel.String() mismatch")
	}
	if Brightness.String() != "brightness" || SendField(-1).String() != "SendField(-1)" {
		t.Error("SendField.String() mismatch")
	}
	if n := len(SendFields()); n != 11 {
		t.Errorf("len(SendFields()) = %d, want 11", n)
	}
}

func TestLoadState(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path gives defaults", func(t *testing.T) {
		st, err := LoadState("")
		if err != nil {
			t.Fatalf("LoadState() error = %v", err)
		}
		if st != Defaults() {
			t.Error("LoadState(\"\") != Defaults()")
		}
	})

	t.Run("overlay", func(t *testing.T) {
		path := filepath.Join(dir, "state.yaml")
		data := "sync_mode: a-very-long-sync-mode\nclock_offset: 1.5\nanalog_format:\n  framerate: 50\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		st, err := LoadState(path)
		if err != nil {
			t.Fatalf("LoadState() error = %v", err)
		}
		if st.SyncMode != "a-very-long-syn" {
			t.Errorf("SyncMode = %q", st.SyncMode)
		}
		if st.ClockOffset != 1.5 || st.AnalogFormat.Framerate != 50 {
			t.Errorf("overlay not applied: %+v", st)
		}
		if st.AnalogFormat.Resolution != "1920x1080" {
			t.Errorf("unset field lost its default: %q", st.AnalogFormat.Resolution)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadState(filepath.Join(dir, "nope.yaml")); !errors.Is(err, ErrStateFile) {
			t.Errorf("error = %v, want ErrStateFile", err)
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("sync_mode: [\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadState(path); !errors.Is(err, ErrStateFile) {
			t.Errorf("error = %v, want ErrStateFile", err)
		}
	})
}
