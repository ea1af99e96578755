package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidNodeID is returned when a document contains a node or connection
// endpoint with an empty identifier.
var ErrInvalidNodeID = errors.New("node ID must not be empty")

// Document is the serialization format for graphs.
// Nodes and connections keep the graph's insertion order so a document
// round-trips to an identical graph.
type Document struct {
	Nodes       []NodeDoc       `json:"nodes"`
	Connections []ConnectionDoc `json:"connections"`
}

// NodeDoc is a serialized node with its position and optional grid cell.
type NodeDoc struct {
	ID  string  `json:"id"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Col *int    `json:"col,omitempty"`
	Row *int    `json:"row,omitempty"`
}

// ConnectionDoc is a serialized connection.
type ConnectionDoc struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Cost float64 `json:"cost"`
}

// FromGraph converts g to its document form.
func FromGraph(g *Graph) Document {
	doc := Document{
		Nodes:       make([]NodeDoc, 0, g.Len()),
		Connections: make([]ConnectionDoc, 0, g.ConnectionCount()),
	}
	for _, n := range g.order {
		p := g.positions[n]
		nd := NodeDoc{ID: string(n), X: p.X, Y: p.Y, Z: p.Z}
		if c, ok := g.cells[n]; ok {
			col, row := c.Col, c.Row
			nd.Col, nd.Row = &col, &row
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, n := range g.order {
		for _, c := range g.adjacency[n] {
			doc.Connections = append(doc.Connections, ConnectionDoc{
				From: string(c.From),
				To:   string(c.To),
				Cost: c.Cost,
			})
		}
	}
	return doc
}

// ToGraph builds a graph from the document.
// Connections may reference nodes that are not listed in Nodes; those nodes
// are added implicitly at the origin. Cells are only set when both col and
// row are present.
func (d Document) ToGraph() (*Graph, error) {
	g := New()
	for _, nd := range d.Nodes {
		if nd.ID == "" {
			return nil, ErrInvalidNodeID
		}
		n := Node(nd.ID)
		g.SetPosition(n, Position{X: nd.X, Y: nd.Y, Z: nd.Z})
		if nd.Col != nil && nd.Row != nil {
			g.SetCell(n, Cell{Col: *nd.Col, Row: *nd.Row})
		}
	}
	for i, cd := range d.Connections {
		if cd.From == "" || cd.To == "" {
			return nil, fmt.Errorf("connection %d: %w", i, ErrInvalidNodeID)
		}
		g.AddConnection(Connection{From: Node(cd.From), To: Node(cd.To), Cost: cd.Cost})
	}
	return g, nil
}

// Marshal encodes g as indented JSON.
func Marshal(g *Graph) ([]byte, error) {
	return json.MarshalIndent(FromGraph(g), "", "  ")
}

// WriteJSON encodes g as JSON and writes it to w.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON document from r into a graph.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.ToGraph()
}

// ReadFile reads a graph document from path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteFile writes g to path as a JSON document.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
