package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/heuristic"
	"github.com/matzehuels/gridpath/pkg/search"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if cfg.Grid.Columns != 10 || cfg.Server.Addr != ":8080" {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridpath.toml")
	data := `
[grid]
columns = 30
seed = 42

[solver]
algorithm = "dijkstra"
step_delay = "10ms"

[cache]
backend = "redis"
ttl = "1h"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Grid.Columns != 30 || cfg.Grid.Seed != 42 {
		t.Errorf("Grid = %+v, want columns 30 and seed 42", cfg.Grid)
	}
	if cfg.Grid.Rows != 10 {
		t.Errorf("Grid.Rows = %d, want default 10", cfg.Grid.Rows)
	}
	if cfg.Solver.StepDelay.Duration != 10*time.Millisecond {
		t.Errorf("StepDelay = %v, want 10ms", cfg.Solver.StepDelay)
	}
	if cfg.Solver.Heuristic != "euclidean" {
		t.Errorf("Heuristic = %q, want default euclidean", cfg.Solver.Heuristic)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("Cache = %+v, want redis with 1h ttl", cfg.Cache)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want default", cfg.Cache.RedisAddr)
	}

	sc, err := cfg.Search()
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := search.Config{Algorithm: search.AlgorithmDijkstra, Heuristic: heuristic.Euclidean, StepDelay: 10 * time.Millisecond}
	if sc != want {
		t.Errorf("Search() = %+v, want %+v", sc, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "[grid\ncolumns = 1"},
		{"unknown key", "[grid]\ncolums = 5"},
		{"unknown section", "[render]\nformat = \"svg\""},
		{"bad duration", "[solver]\nstep_delay = \"soon\""},
		{"bad algorithm", "[solver]\nalgorithm = \"bfs\""},
		{"bad heuristic", "[solver]\nheuristic = \"octile\""},
		{"negative delay", "[solver]\nstep_delay = \"-1s\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\""},
		{"zero session ttl", "[server]\nsession_ttl = \"0s\""},
		{"no runs", "[server]\nmax_runs = 0"},
		{"bad grid", "[grid]\nmin_gap = 3.0\nmax_gap = 1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(tt.data), &cfg)
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !errors.IsInvalid(err) {
				t.Errorf("Parse() code = %s, want an INVALID_* code", errors.GetCode(err))
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" {
		t.Errorf("MarshalText = %q, want 1m30s", text)
	}
}
