package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildSample() *Graph {
	g := New()
	g.SetPosition("a", Position{X: 0, Y: 0, Z: 0})
	g.SetCell("a", Cell{Col: 0, Row: 0})
	g.SetPosition("b", Position{X: 1.5, Y: 0, Z: 0})
	g.SetCell("b", Cell{Col: 1, Row: 0})
	g.AddConnection(Connection{From: "a", To: "b", Cost: 1.5})
	g.AddConnection(Connection{From: "b", To: "a", Cost: 1.5})
	g.AddConnection(Connection{From: "b", To: "c", Cost: 2})
	return g
}

func TestRoundTrip(t *testing.T) {
	g := buildSample()

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.Len() != g.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), g.Len())
	}
	if got.ConnectionCount() != g.ConnectionCount() {
		t.Errorf("ConnectionCount() = %d, want %d", got.ConnectionCount(), g.ConnectionCount())
	}
	for i, n := range g.Nodes() {
		if got.Nodes()[i] != n {
			t.Errorf("Nodes()[%d] = %s, want %s", i, got.Nodes()[i], n)
		}
		if got.Position(n) != g.Position(n) {
			t.Errorf("Position(%s) = %v, want %v", n, got.Position(n), g.Position(n))
		}
	}
	if c, ok := got.Cell("b"); !ok || c.Col != 1 {
		t.Errorf("Cell(b) = %v, %v", c, ok)
	}
	if _, ok := got.Cell("c"); ok {
		t.Error("Cell(c) should not be set")
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   error
	}{
		{
			name:      "Empty",
			input:     `{"nodes": [], "connections": []}`,
			wantNodes: 0,
		},
		{
			name:      "ImplicitNodes",
			input:     `{"connections": [{"from": "a", "to": "b", "cost": 1}]}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:    "EmptyNodeID",
			input:   `{"nodes": [{"id": ""}]}`,
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "EmptyEndpoint",
			input:   `{"connections": [{"from": "a", "to": "", "cost": 1}]}`,
			wantErr: ErrInvalidNodeID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadJSON(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if g.Len() != tt.wantNodes {
				t.Errorf("Len() = %d, want %d", g.Len(), tt.wantNodes)
			}
			if g.ConnectionCount() != tt.wantEdges {
				t.Errorf("ConnectionCount() = %d, want %d", g.ConnectionCount(), tt.wantEdges)
			}
		})
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON() error = nil, want decode error")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g := buildSample()

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ConnectionCount() != 3 {
		t.Errorf("ConnectionCount() = %d, want 3", got.ConnectionCount())
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := Marshal(buildSample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(buildSample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Marshal output differs between identical graphs")
	}
}
