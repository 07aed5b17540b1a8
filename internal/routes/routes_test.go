package routes

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/i2pi/osc-firmware/internal/device"
	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

func newTestDispatcher(t *testing.T) (*router.Dispatcher, *device.Store) {
	t.Helper()
	store := device.NewStore(device.Defaults())
	tbl, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return router.NewDispatcher(tbl), store
}

func msg(t *testing.T, address, tags string, payload ...any) osc.Message {
	t.Helper()
	m, err := osc.NewMessage(address, tags, payload...)
	if err != nil {
		t.Fatalf("NewMessage(%q) error = %v", address, err)
	}
	return m
}

func lutFloats(base float32) []any {
	out := make([]any, 2*device.LUTPoints)
	for i := range out {
		out[i] = base + float32(i)/64
	}
	return out
}

func TestTable_Order(t *testing.T) {
	store := device.NewStore(device.Defaults())
	tbl, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tbl.Len() != 27 {
		t.Fatalf("Len() = %d, want 27", tbl.Len())
	}
	routes := tbl.Routes()
	want := map[int]string{
		0:  "/ack",
		1:  "/sync",
		2:  "/sync_mode",
		3:  "/input/[1-4]/connected",
		9:  "/clock_offset",
		13: "/analog_format/color_matrix/[0-2]/[0-2]",
		14: "/send/[1-4]/input",
		15: "/send/[1-4]/scaleX",
		25: "/send/[1-4]/hue",
		26: "/send/[1-4]/lut/[YRGB]",
	}
	for i, p := range want {
		if routes[i].Pattern != p {
			t.Errorf("route %d = %q, want %q", i, routes[i].Pattern, p)
		}
	}
}

func TestSetThenGet(t *testing.T) {
	tests := []struct {
		address string
		tags    string
		payload []any
	}{
		{"/sync_mode", "s", []any{"free"}},
		{"/input/2/resolution", "s", []any{"1280x720"}},
		{"/input/3/framerate", "f", []any{float32(59.94)}},
		{"/input/4/colorspace", "s", []any{"RGB"}},
		{"/input/1/bit_depth", "i", []any{int32(12)}},
		{"/input/1/chroma_subsampling", "s", []any{"4:2:2"}},
		{"/clock_offset", "f", []any{float32(-0.25)}},
		{"/analog_format/resolution", "s", []any{"720x576"}},
		{"/analog_format/framerate", "f", []any{float32(25)}},
		{"/analog_format/colourspace", "s", []any{"YPbPr"}},
		{"/analog_format/color_matrix/2/1", "f", []any{float32(0.3)}},
		{"/send/4/input", "i", []any{int32(2)}},
		{"/send/1/scaleX", "f", []any{float32(2)}},
		{"/send/2/rotation", "f", []any{float32(90)}},
		{"/send/3/hue", "f", []any{float32(0.1)}},
		{"/send/2/lut/G", strings.Repeat("f", 32), lutFloats(0)},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			d, _ := newTestDispatcher(t)
			rec := &router.Recorder{}

			d.Dispatch(msg(t, tt.address, tt.tags, tt.payload...), rec)
			if len(rec.Messages) != 0 {
				t.Fatalf("SET replied %v", rec.Messages)
			}

			d.Dispatch(msg(t, tt.address, ""), rec)
			if len(rec.Messages) != 1 {
				t.Fatalf("GET replies = %d, want 1", len(rec.Messages))
			}
			got := rec.Messages[0]
			if got.Address != tt.address || got.Tags != tt.tags {
				t.Errorf("reply = %s, want %s ,%s", got, tt.address, tt.tags)
			}
			if !reflect.DeepEqual(got.Payload(), tt.payload) {
				t.Errorf("payload = %v, want %v", got.Payload(), tt.payload)
			}
		})
	}
}

func TestInputConnected(t *testing.T) {
	d, store := newTestDispatcher(t)
	rec := &router.Recorder{}

	d.Dispatch(msg(t, "/input/1/connected", ""), rec)
	d.Dispatch(msg(t, "/input/3/connected", ""), rec)
	if rec.Messages[0].Tags != "T" || rec.Messages[1].Tags != "F" {
		t.Fatalf("connected replies = %v, %v", rec.Messages[0], rec.Messages[1])
	}

	rec.Reset()
	d.Dispatch(msg(t, "/input/3/connected", "T"), rec)
	if len(rec.Messages) != 0 {
		t.Fatalf("SET T replied %v", rec.Messages)
	}
	if v, _ := store.InputConnected(2); !v {
		t.Error("input 3 not connected after SET T")
	}

	d.Dispatch(msg(t, "/input/3/connected", "i", int32(0)), rec)
	if errs := rec.Errors(); len(errs) != 1 || errs[0] != "Expected boolean true/false" {
		t.Errorf("errors = %v", errs)
	}
	if v, _ := store.InputConnected(2); !v {
		t.Error("rejected SET changed the state")
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) osc.Message
		want string
	}{
		{
			name: "unknown address",
			msg:  func(t *testing.T) osc.Message { return msg(t, "/send/5/scaleX", "f", float32(1)) },
			want: "invalid address",
		},
		{
			name: "wrong tag",
			msg:  func(t *testing.T) osc.Message { return msg(t, "/clock_offset", "i", int32(1)) },
			want: "format mismatch",
		},
		{
			name: "input number out of range",
			msg:  func(t *testing.T) osc.Message { return msg(t, "/send/1/input", "i", int32(5)) },
			want: "Invalid input number",
		},
		{
			name: "input number zero",
			msg:  func(t *testing.T) osc.Message { return msg(t, "/send/1/input", "i", int32(0)) },
			want: "Invalid input number",
		},
		{
			name: "short LUT",
			msg: func(t *testing.T) osc.Message {
				return msg(t, "/send/1/lut/Y", strings.Repeat("f", 31), lutFloats(0)[:31]...)
			},
			want: `expected 32 'f' arguments (16 x/y control points), got 31`,
		},
		{
			name: "unknown LUT channel",
			msg:  func(t *testing.T) osc.Message { return msg(t, "/send/1/lut/X", "") },
			want: "invalid address",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t)
			rec := &router.Recorder{}
			d.Dispatch(tt.msg(t), rec)
			if errs := rec.Errors(); len(errs) != 1 || errs[0] != tt.want {
				t.Errorf("errors = %q, want [%q]", errs, tt.want)
			}
		})
	}
}

func TestSync(t *testing.T) {
	d, _ := newTestDispatcher(t)
	rec := &router.Recorder{}
	d.Dispatch(msg(t, "/sync", ""), rec)

	if len(rec.Messages) != 103 {
		t.Fatalf("sync replies = %d, want 102 + ack", len(rec.Messages))
	}
	if errs := rec.Errors(); len(errs) != 0 {
		t.Fatalf("sync produced diagnostics: %v", errs)
	}

	want := map[int]string{
		0:   "/sync_mode",
		1:   "/input/1/connected",
		4:   "/input/4/connected",
		5:   "/input/1/resolution",
		25:  "/clock_offset",
		29:  "/analog_format/color_matrix/0/0",
		30:  "/analog_format/color_matrix/0/1",
		37:  "/analog_format/color_matrix/2/2",
		38:  "/send/1/input",
		42:  "/send/1/scaleX",
		86:  "/send/1/lut/Y",
		87:  "/send/1/lut/R",
		101: "/send/4/lut/B",
		102: "/ack",
	}
	for i, addr := range want {
		if rec.Messages[i].Address != addr {
			t.Errorf("reply %d = %q, want %q", i, rec.Messages[i].Address, addr)
		}
	}
	if lut := rec.Messages[86]; len(lut.Args) != 32 {
		t.Errorf("LUT reply has %d args, want 32", len(lut.Args))
	}
}

func TestAck(t *testing.T) {
	d, _ := newTestDispatcher(t)
	rec := &router.Recorder{}
	d.Dispatch(msg(t, "/ack", "i", int32(1)), rec)
	if len(rec.Messages) != 1 || rec.Messages[0].Address != "/ack" || rec.Messages[0].Tags != "" {
		t.Errorf("replies = %v, want bare /ack", rec.Messages)
	}
}

func TestKeyDecoders(t *testing.T) {
	if _, err := sendKey(router.Fields("9")); !errors.Is(err, ErrInvalidSend) {
		t.Errorf("sendKey(9) error = %v", err)
	}
	if _, err := inputKey(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inputKey(nil) error = %v", err)
	}
	if _, err := matrixKey(router.Fields("13")); !errors.Is(err, ErrMatrixIndex) {
		t.Errorf("matrixKey(13) error = %v", err)
	}
	if _, err := lutChannelKey(router.Fields("2X")); !errors.Is(err, ErrInvalidLUTKey) {
		t.Errorf("lutChannelKey(2X) error = %v", err)
	}

	k, err := lutChannelKey(router.Fields("3B"))
	if err != nil || k.send != 2 || k.channel != device.ChannelB {
		t.Errorf("lutChannelKey(3B) = %+v, %v", k, err)
	}
	c, err := matrixKey(router.Fields("21"))
	if err != nil || c != (matrixCell{row: 2, col: 1}) {
		t.Errorf("matrixKey(21) = %+v, %v", c, err)
	}
}

func TestObserverSeesCanonicalValue(t *testing.T) {
	d, _ := newTestDispatcher(t)
	var changes []router.Change
	d.AddObserver(router.ObserverFunc(func(c router.Change) { changes = append(changes, c) }))

	rec := &router.Recorder{Name: "test"}
	d.Dispatch(msg(t, "/sync_mode", "s", "a-mode-name-longer-than-fifteen"), rec)
	d.Dispatch(msg(t, "/input/2/connected", "F"), rec)

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	if got := changes[0].Args; len(got) != 1 || got[0] != "a-mode-name-lon" {
		t.Errorf("sync_mode change args = %v", got)
	}
	if changes[1].Tags != "F" || changes[1].Origin != "test" {
		t.Errorf("connected change = %+v", changes[1])
	}
}
