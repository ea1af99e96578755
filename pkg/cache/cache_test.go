package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/gridpath/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if n, err := c.Clear(ctx); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v, want 0, nil", n, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestSolveKey(t *testing.T) {
	base := SolveKeyOpts{Start: "n[0,0]", Goal: "n[9,9]", Algorithm: "astar", Heuristic: "euclidean"}
	key := SolveKey("abc", base)

	if !strings.HasPrefix(key, "solve:") {
		t.Errorf("SolveKey = %q, want solve: prefix", key)
	}
	if key != SolveKey("abc", base) {
		t.Error("SolveKey should be deterministic")
	}

	variants := []SolveKeyOpts{
		{Start: "n[0,1]", Goal: base.Goal, Algorithm: base.Algorithm, Heuristic: base.Heuristic},
		{Start: base.Start, Goal: "n[9,8]", Algorithm: base.Algorithm, Heuristic: base.Heuristic},
		{Start: base.Start, Goal: base.Goal, Algorithm: "dijkstra"},
		{Start: base.Start, Goal: base.Goal, Algorithm: base.Algorithm, Heuristic: "chebyshev"},
	}
	for _, v := range variants {
		if SolveKey("abc", v) == key {
			t.Errorf("SolveKey(%+v) collides with %+v", v, base)
		}
	}
	if SolveKey("abd", base) == key {
		t.Error("different graph hashes should produce different keys")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "solve:1", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "solve:1")
	if err != nil || !hit || !bytes.Equal(data, []byte("payload")) {
		t.Errorf("Get = %q, %v, %v, want payload hit", data, hit, err)
	}

	if err := c.Delete(ctx, "solve:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "solve:1"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "solve:1"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %q, want %q", c.Dir(), dir)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                 sync.Mutex
	hits, misses, sets map[string]int
}

func newCountingHooks() *countingHooks {
	return &countingHooks{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
}

func (h *countingHooks) OnCacheHit(_ context.Context, k string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[k]++
}

func (h *countingHooks) OnCacheMiss(_ context.Context, k string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[k]++
}

func (h *countingHooks) OnCacheSet(_ context.Context, k string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets[k]++
}

func TestInstrument(t *testing.T) {
	hooks := newCountingHooks()
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := Instrument(fc)

	key := SolveKey("g", SolveKeyOpts{Start: "a", Goal: "b", Algorithm: "dijkstra"})
	c.Get(ctx, key)
	c.Set(ctx, key, []byte("x"), 0)
	c.Get(ctx, key)
	c.Get(ctx, "plain")

	if hooks.misses["solve"] != 1 || hooks.hits["solve"] != 1 || hooks.sets["solve"] != 1 {
		t.Errorf("solve counters = hits %d misses %d sets %d, want 1 each",
			hooks.hits["solve"], hooks.misses["solve"], hooks.sets["solve"])
	}
	if hooks.misses["other"] != 1 {
		t.Errorf("other misses = %d, want 1", hooks.misses["other"])
	}
}
