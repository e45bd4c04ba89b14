package contagion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/awalterschulze/gographviz/ast"
)

// Loader builds networks from DOT digraphs:
//
//	digraph banks {
//	  1 [name="JPM", equity=100]
//	  2 [name="BNP", equity=40]
//	  1 -> 2 [exposure=50]
//	}
//
// Node ids are integer bank ids. Edges are applied in text order, which is
// also the order successors are visited during propagation.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

type dotEdge struct {
	from, to string
	attrs    map[string]string
}

func (l *Loader) Load(dot string) (*Network, error) {
	g, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse DOT: %v", ErrMalformedNetwork, err)
	}
	if g.Type != ast.DIGRAPH {
		return nil, fmt.Errorf("%w: bank networks must be a digraph", ErrMalformedNetwork)
	}

	var banks []Bank
	var edges []dotEdge

	for _, stmt := range g.StmtList {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			b, err := bankFromNode(s)
			if err != nil {
				return nil, err
			}
			banks = append(banks, b)
		case *ast.EdgeStmt:
			es, err := edgesFromStmt(s)
			if err != nil {
				return nil, err
			}
			edges = append(edges, es...)
		case *ast.SubGraph:
			return nil, fmt.Errorf("%w: subgraphs are not supported", ErrMalformedNetwork)
		}
	}

	exposures := make([]Exposure, 0, len(edges))
	for _, e := range edges {
		from, err := parseBankID(e.from)
		if err != nil {
			return nil, err
		}
		to, err := parseBankID(e.to)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(e.attrs, "exposure")
		if err != nil {
			return nil, fmt.Errorf("%w: edge %s->%s: %v", ErrMalformedNetwork, e.from, e.to, err)
		}
		exposures = append(exposures, Exposure{From: from, To: to, Amount: amount})
	}

	return NewNetwork(banks, exposures)
}

func bankFromNode(s *ast.NodeStmt) (Bank, error) {
	raw := s.NodeID.ID.String()
	id, err := parseBankID(raw)
	if err != nil {
		return Bank{}, err
	}

	attrs := attrMap(s.Attrs)
	name := attrs["name"]
	if name == "" {
		name = attrs["label"]
	}

	equity, err := parseAmount(attrs, "equity")
	if err != nil {
		return Bank{}, fmt.Errorf("%w: bank %d: %v", ErrMalformedNetwork, id, err)
	}

	return Bank{ID: id, Name: name, Equity: equity}, nil
}

// edgesFromStmt expands chains such as 1 -> 2 -> 3 into single hops that
// share the statement's attributes.
func edgesFromStmt(s *ast.EdgeStmt) ([]dotEdge, error) {
	attrs := attrMap(s.Attrs)

	src, ok := s.Source.(*ast.NodeID)
	if !ok {
		return nil, fmt.Errorf("%w: edge source must be a bank id", ErrMalformedNetwork)
	}

	out := make([]dotEdge, 0, len(s.EdgeRHS))
	from := src.ID.String()
	for _, rh := range s.EdgeRHS {
		if rh.Op != ast.DIRECTED {
			return nil, fmt.Errorf("%w: exposures must be directed edges", ErrMalformedNetwork)
		}
		dst, ok := rh.Destination.(*ast.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: edge destination must be a bank id", ErrMalformedNetwork)
		}
		to := dst.ID.String()
		out = append(out, dotEdge{from: from, to: to, attrs: attrs})
		from = to
	}
	return out, nil
}

func attrMap(list ast.AttrList) map[string]string {
	out := map[string]string{}
	for k, v := range list.GetMap() {
		out[k] = unquote(v)
	}
	return out
}

func parseBankID(raw string) (int, error) {
	id, err := strconv.Atoi(unquote(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: bank id %q is not an integer", ErrMalformedNetwork, raw)
	}
	return id, nil
}

func parseAmount(attrs map[string]string, key string) (float64, error) {
	raw, ok := attrs[key]
	if !ok || raw == "" {
		return 0, fmt.Errorf("missing %s attribute", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// unquote strips the surrounding quotes DOT keeps on string ids.
func unquote(val string) string {
	val = strings.TrimSpace(val)
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	return val
}
