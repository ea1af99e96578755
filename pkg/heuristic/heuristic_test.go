package heuristic

import (
	"math"
	"testing"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{input: "", want: Euclidean},
		{input: "euclidean", want: Euclidean},
		{input: "Manhattan", want: Manhattan},
		{input: " chebyshev ", want: Chebyshev},
		{input: "zero", want: Zero},
		{input: "octile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidHeuristic) {
					t.Fatalf("ParseType(%q) error = %v, want INVALID_HEURISTIC", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	for _, name := range Names() {
		typ, err := ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", name, err)
		}
		if typ.String() != name {
			t.Errorf("String() = %q, want %q", typ.String(), name)
		}
	}
	if got := Type(42).String(); got != "heuristic(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEstimators(t *testing.T) {
	a := graph.Position{X: 0, Y: 0, Z: 0}
	b := graph.Position{X: 3, Y: 0, Z: 4}

	tests := []struct {
		typ  Type
		want float64
	}{
		{typ: Euclidean, want: 5},
		{typ: Manhattan, want: 7},
		{typ: Chebyshev, want: 4},
		{typ: Zero, want: 0},
	}

	reg := Default()
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			e, err := reg.Lookup(tt.typ)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if got := e(a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("estimate = %v, want %v", got, tt.want)
			}
			if got := e(b, a); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("reverse estimate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChebyshevNeverExceedsEuclidean(t *testing.T) {
	reg := Default()
	euc, _ := reg.Lookup(Euclidean)
	che, _ := reg.Lookup(Chebyshev)
	points := []graph.Position{
		{X: 1, Y: 2, Z: 3},
		{X: -4, Z: 2},
		{},
		{X: 7.5, Y: -1, Z: 0.25},
	}
	for _, p := range points {
		for _, q := range points {
			if che(p, q) > euc(p, q)+1e-12 {
				t.Errorf("chebyshev(%v, %v) = %v > euclidean %v", p, q, che(p, q), euc(p, q))
			}
		}
	}
}

func TestBind(t *testing.T) {
	g := graph.New()
	g.SetPosition("a", graph.Position{X: 0})
	g.SetPosition("b", graph.Position{X: 6, Z: 8})

	h, err := Bind(Euclidean, g)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := h("a", "b"); got != 10 {
		t.Errorf("h(a, b) = %v, want 10", got)
	}
}

func TestRegistryLookupMissing(t *testing.T) {
	reg := Registry{}
	if _, err := reg.Bind(Euclidean, graph.New()); !errors.Is(err, errors.ErrCodeInvalidHeuristic) {
		t.Errorf("Bind() error = %v, want INVALID_HEURISTIC", err)
	}

	reg.Register(Euclidean, func(a, b graph.Position) float64 { return 1 })
	h, err := reg.Bind(Euclidean, graph.New())
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := h("x", "y"); got != 1 {
		t.Errorf("h = %v, want 1", got)
	}
}
