package router

import (
	"reflect"
	"testing"
)

func TestSyncAllCounts(t *testing.T) {
	calls := 0
	tbl, err := NewTable(
		Route{Pattern: "/ack", Handler: Ack()},
		Route{Pattern: "/sync", Handler: Sync()},
		Route{Pattern: "/plain", Handler: Value(Int32Codec, func() int32 { calls++; return 1 }, nil)},
		Route{Pattern: "/group/[1-4]", Handler: Indexed(
			func(f Fields) (int, error) { return f.Digit(0, '1', '4', errBadSend) },
			Int32Codec,
			func(i int) (int32, error) { calls++; return int32(i), nil },
			nil)},
	)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	rec := &Recorder{}
	NewDispatcher(tbl).SyncAll(rec)

	if calls != 1+4 {
		t.Errorf("getter calls = %d, want 5", calls)
	}
	want := []string{
		"/plain ,i 1",
		"/group/1 ,i 0",
		"/group/2 ,i 1",
		"/group/3 ,i 2",
		"/group/4 ,i 3",
		"/ack ,",
	}
	if got := replies(rec); !reflect.DeepEqual(got, want) {
		t.Errorf("sync replies = %v, want %v", got, want)
	}
}

func TestSyncAllOrderAndSkips(t *testing.T) {
	s := &testState{}
	d := NewDispatcher(newTestTable(t, s))
	rec := &Recorder{}
	d.Dispatch(msg(t, "/sync", ""), rec)

	got := replies(rec)
	if len(got) == 0 || got[len(got)-1] != "/ack ," {
		t.Fatalf("sync did not end with /ack: %v", got)
	}

	// clock_offset, 4 scaleX, 4 posX, 4 connected, curve, version,
	// 10 expansions of /wide with 6 field errors, panic route error, ack.
	if len(got) != 1+4+4+4+1+1+10+1+1 {
		t.Errorf("got %d replies: %v", len(got), got)
	}
	if got[0] != "/clock_offset ,f 0" || got[1] != "/send/1/scaleX ,f 0" || got[5] != "/send/1/posX ,f 0" {
		t.Errorf("unexpected order: %v", got[:6])
	}
	for _, r := range got {
		if r == "/write_only ,i 0" {
			t.Error("sync replied for a route without a getter")
		}
	}
}

func TestSyncAllSkipsOpenPatterns(t *testing.T) {
	tbl, err := NewTable(
		Route{Pattern: "/any/*", Handler: Value(Int32Codec, func() int32 { return 1 }, nil)},
		Route{Pattern: "/not/[^a]", Handler: Value(Int32Codec, func() int32 { return 1 }, nil)},
		Route{Pattern: `/lit\*`, Handler: Value(Int32Codec, func() int32 { return 2 }, nil)},
	)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	rec := &Recorder{}
	NewDispatcher(tbl).SyncAll(rec)

	want := []string{"/lit* ,i 2", "/ack ,"}
	if got := replies(rec); !reflect.DeepEqual(got, want) {
		t.Errorf("replies = %v, want %v", got, want)
	}
}
