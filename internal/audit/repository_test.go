package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i2pi/osc-firmware/internal/infrastructure/config"
	"github.com/i2pi/osc-firmware/internal/infrastructure/database"
	"github.com/i2pi/osc-firmware/internal/router"
	"github.com/i2pi/osc-firmware/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Address: "/clock_offset", Tags: "f", Args: []any{float32(0.5)}, Origin: "udp:10.0.0.5:5000", CreatedAt: base},
		{Address: "/send/1/scaleX", Tags: "f", Args: []any{float32(2)}, Origin: "mqtt", CreatedAt: base.Add(time.Second)},
		{Address: "/send/1/input", Tags: "i", Args: []any{int32(3)}, Origin: "api", CreatedAt: base.Add(2 * time.Second)},
		{Address: "/input/1/connected", Tags: "T", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if e.ID == "" {
			t.Error("Create() did not assign an ID")
		}
	}

	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 4 || len(res.Entries) != 4 || res.Limit != DefaultLimit {
		t.Fatalf("List() = total %d, %d entries, limit %d", res.Total, len(res.Entries), res.Limit)
	}
	if res.Entries[0].Address != "/input/1/connected" {
		t.Errorf("first entry = %s, want most recent", res.Entries[0].Address)
	}
	if got := res.Entries[0].Args; got == nil || len(got) != 0 {
		t.Errorf("empty args = %#v, want []", got)
	}
	last := res.Entries[3]
	if last.Origin != "udp:10.0.0.5:5000" || !last.CreatedAt.Equal(base) || last.Args[0] != 0.5 {
		t.Errorf("oldest entry = %+v", last)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"address", Filter{Address: "/clock_offset"}, []string{"/clock_offset"}},
		{"prefix", Filter{Prefix: "/send/1/"}, []string{"/send/1/input", "/send/1/scaleX"}},
		{"origin", Filter{Origin: "mqtt"}, []string{"/send/1/scaleX"}},
		{"since", Filter{Since: base.Add(2 * time.Second)}, []string{"/input/1/connected", "/send/1/input"}},
		{"page", Filter{Limit: 1, Offset: 1}, []string{"/send/1/input"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var got []string
			for _, e := range res.Entries {
				got = append(got, e.Address)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := newTestRepo(t)

	res, err := repo.List(context.Background(), Filter{Limit: 10_000, Offset: -3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != MaxLimit || res.Offset != 0 || res.Entries == nil {
		t.Errorf("List() = %+v", res)
	}
}

// fakeRepo records entries in memory and can be made to fail or block.
type fakeRepo struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	block   chan struct{}
}

func (f *fakeRepo) Create(_ context.Context, e *Entry) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeRepo) List(context.Context, Filter) (*ListResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func TestRecorder_WritesChanges(t *testing.T) {
	repo := newTestRepo(t)
	rec := NewRecorder(repo, 0)
	rec.Start(context.Background())

	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rec.ParameterChanged(router.Change{Address: "/sync_mode", Tags: "s", Args: []any{"free"}, Origin: "api", At: at})
	rec.ParameterChanged(router.Change{Address: "/clock_offset", Tags: "f", Args: []any{float32(1)}, At: at.Add(time.Millisecond)})
	rec.Stop()

	if s := rec.Stats(); s.Recorded != 2 || s.Dropped != 0 || s.Failed != 0 {
		t.Errorf("Stats() = %+v", s)
	}
	res, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Entries[1].Args[0] != "free" || res.Entries[1].Origin != "api" {
		t.Errorf("entries = %+v", res.Entries)
	}

	// Changes after Stop are counted as dropped.
	rec.ParameterChanged(router.Change{Address: "/sync_mode"})
	if got := rec.Stats().Dropped; got != 1 {
		t.Errorf("Dropped after Stop = %d, want 1", got)
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := &fakeRepo{block: make(chan struct{})}
	rec := NewRecorder(repo, 1)
	rec.Start(context.Background())

	// The first change is taken by the blocked worker, the second fills the
	// queue; wait until the worker holds the first.
	rec.ParameterChanged(router.Change{Address: "/a"})
	deadline := time.Now().Add(2 * time.Second)
	for len(rec.queue) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	rec.ParameterChanged(router.Change{Address: "/b"})
	rec.ParameterChanged(router.Change{Address: "/c"})

	close(repo.block)
	rec.Stop()

	if s := rec.Stats(); s.Recorded != 2 || s.Dropped != 1 {
		t.Errorf("Stats() = %+v, want 2 recorded, 1 dropped", s)
	}
	if repo.count() != 2 {
		t.Errorf("repo has %d entries, want 2", repo.count())
	}
}

func TestRecorder_CountsFailures(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk full")}
	rec := NewRecorder(repo, 4)
	rec.Start(context.Background())

	rec.ParameterChanged(router.Change{Address: "/a"})
	rec.Stop()

	if s := rec.Stats(); s.Failed != 1 || s.Recorded != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}
